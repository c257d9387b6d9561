package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"diploma360/config"
	"diploma360/models"
	"diploma360/routes"
	"diploma360/utils"
)

type fakeUploader struct {
	fail bool
	keys []string
}

func (f *fakeUploader) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if f.fail {
		return "", context.DeadlineExceeded
	}
	f.keys = append(f.keys, key)
	return "https://media.test/" + key, nil
}

type testEnv struct {
	server   *gin.Engine
	users    *memUserRepo
	events   *memEventRepo
	uploader *fakeUploader
}

func setupServer(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	env := &testEnv{
		server:   gin.New(),
		users:    newMemUserRepo(),
		events:   newMemEventRepo(),
		uploader: &fakeUploader{},
	}
	cfg := config.Config{
		CookieName:  "jwt",
		QuotaLimit:  1000,
		QuotaWindow: time.Hour,
	}
	routes.RegisterRoutes(env.server, env.users, env.events, env.uploader, rdb, utils.NewCacheInvalidator(rdb), cfg)
	return env
}

// doReq issues a JSON request against the test server. A non-empty email
// attaches a session cookie for that identity.
func (e *testEnv) doReq(t *testing.T, method, path string, body any, email string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if email != "" {
		token, err := utils.GenerateToken(email)
		if err != nil {
			t.Fatalf("generate token: %v", err)
		}
		req.AddCookie(&http.Cookie{Name: "jwt", Value: token})
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) seedUser(t *testing.T, name, email, role string) models.User {
	t.Helper()
	u := models.User{Name: name, Email: email, PhotoURL: "https://img.test/" + name + ".png", Role: role, UID: uuid.NewString()}
	if err := e.users.Create(context.Background(), &u); err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

func (e *testEnv) seedEvent(t *testing.T, organizerEmail string, fee int) models.Event {
	t.Helper()
	ev := models.Event{
		ID:                   uuid.NewString(),
		EventName:            "Campus Open Day",
		Category:             "education",
		Description:          "A tour of the campus.",
		Location:             "Main Hall",
		LocationType:         models.LocationPhysical,
		NumberOfSeats:        100,
		Fee:                  fee,
		Date:                 time.Now().Add(30 * 24 * time.Hour).UTC(),
		Time:                 "10:00",
		RegistrationDeadline: time.Now().Add(20 * 24 * time.Hour).UTC(),
		OrganizerName:        "Org",
		OrganizerEmail:       organizerEmail,
		EventImage:           "https://media.test/seeded.png",
	}
	if err := e.events.Create(context.Background(), &ev); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return ev
}

func mustDecodeList(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func cookieValue(rec *httptest.ResponseRecorder, name string) string {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}
