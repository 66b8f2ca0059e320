package adaptor

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"gas-stock/internal/dto/request"
	"gas-stock/internal/dto/response"
	"gas-stock/internal/permission"
	"gas-stock/internal/usecase"
	"gas-stock/pkg/result"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// stubService records calls; every method answers with a fixed success.
type stubService struct {
	usecase.AccountService
	deleted     []uuid.UUID
	viewed      []uuid.UUID
	listedRole  string
	uploadBytes int
}

func (s *stubService) DeleteUser(ctx context.Context, id uuid.UUID) result.Result[struct{}] {
	s.deleted = append(s.deleted, id)
	return result.OK(struct{}{}, "User deleted successfully")
}

func (s *stubService) GetUserProfile(ctx context.Context, id uuid.UUID) result.Result[*response.AccountResponse] {
	s.viewed = append(s.viewed, id)
	return result.OK(&response.AccountResponse{}, "User profile retrieved successfully")
}

func (s *stubService) GetUsersByRole(ctx context.Context, role string) result.Result[*response.UsersResponse] {
	s.listedRole = role
	return result.OK(&response.UsersResponse{}, "Users retrieved successfully")
}

func (s *stubService) UploadProfileImage(ctx context.Context, id uuid.UUID, filename string, content []byte) result.Result[*response.ProfileResponse] {
	s.uploadBytes = len(content)
	return result.OK(&response.ProfileResponse{}, "Profile updated successfully")
}

func (s *stubService) LoginUser(ctx context.Context, req *request.LoginRequest) result.Result[*response.LoginResponse] {
	return result.Unauthorized[*response.LoginResponse]("Invalid username or password")
}

func newTestRouter(svc usecase.AccountService, principal *permission.Principal) *chi.Mux {
	h := NewAccountHandler(svc, 1<<20, zap.NewNop())

	r := chi.NewRouter()
	if principal != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(permission.WithPrincipal(req.Context(), *principal)))
			})
		})
	}
	r.Post("/api/auth/login", h.Login)
	r.Get("/api/profile/{id}", h.GetProfileByID)
	r.Post("/api/profile/image", h.UploadProfileImage)
	r.Delete("/api/user/delete/{id}", h.DeleteUser)
	r.Get("/api/users", h.GetUsersByRole)
	return r
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestDeleteUser_SelfRejectedBeforeService(t *testing.T) {
	svc := &stubService{}
	admin := permission.Principal{UserID: uuid.New(), IsStaff: true, Role: "admin"}
	router := newTestRouter(svc, &admin)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/user/delete/"+admin.UserID.String(), nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["message"] != "Cannot delete your own account" {
		t.Fatalf("unexpected message %v", body["message"])
	}
	if len(svc.deleted) != 0 {
		t.Fatal("service reached on self delete")
	}

	other := uuid.New()
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/user/delete/"+other.String(), nil))
	if rec.Code != http.StatusOK || len(svc.deleted) != 1 || svc.deleted[0] != other {
		t.Fatalf("delete of other user not forwarded: %d %v", rec.Code, svc.deleted)
	}
}

func TestDeleteUser_BadID(t *testing.T) {
	svc := &stubService{}
	admin := permission.Principal{UserID: uuid.New(), Role: "admin"}

	rec := httptest.NewRecorder()
	newTestRouter(svc, &admin).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/user/delete/not-a-uuid", nil))

	if rec.Code != http.StatusBadRequest || len(svc.deleted) != 0 {
		t.Fatalf("expected 400 without service call, got %d", rec.Code)
	}
}

func TestGetProfileByID_Permission(t *testing.T) {
	svc := &stubService{}
	customer := permission.Principal{UserID: uuid.New(), Role: "customer"}
	router := newTestRouter(svc, &customer)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile/"+uuid.NewString(), nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("customer viewed another profile: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile/"+customer.UserID.String(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("customer could not view own profile: %d", rec.Code)
	}
	if len(svc.viewed) != 1 {
		t.Fatalf("expected one service call, got %d", len(svc.viewed))
	}
}

func TestGetProfileByID_RequiresPrincipal(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&stubService{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile/"+uuid.NewString(), nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestGetUsersByRole_DefaultsToCustomer(t *testing.T) {
	svc := &stubService{}
	manager := permission.Principal{UserID: uuid.New(), Role: "manager"}
	router := newTestRouter(svc, &manager)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	if rec.Code != http.StatusOK || svc.listedRole != "customer" {
		t.Fatalf("expected default role customer, got %q (%d)", svc.listedRole, rec.Code)
	}

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/users?role=delivery", nil))
	if svc.listedRole != "delivery" {
		t.Fatalf("role query ignored, got %q", svc.listedRole)
	}
}

func TestLogin_EnvelopeStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"username":"x","password":"y"}`))
	newTestRouter(&stubService{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != false || body["status_code"] != float64(http.StatusUnauthorized) {
		t.Fatalf("unexpected envelope %v", body)
	}

	rec = httptest.NewRecorder()
	newTestRouter(&stubService{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body: expected 400, got %d", rec.Code)
	}
}

func TestUploadProfileImage_Multipart(t *testing.T) {
	svc := &stubService{}
	user := permission.Principal{UserID: uuid.New(), Role: "customer"}
	router := newTestRouter(svc, &user)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("profile_image", "me.png")
	part.Write([]byte("0123456789"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/profile/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || svc.uploadBytes != 10 {
		t.Fatalf("upload not forwarded: %d, %d bytes", rec.Code, svc.uploadBytes)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/profile/image", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing file: expected 400, got %d", rec.Code)
	}
}
