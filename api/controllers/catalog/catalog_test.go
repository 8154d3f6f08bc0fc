package catalog

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalcatalog "github.com/edelguur/admin-backend/internal/catalog"
	"github.com/edelguur/admin-backend/pkg/db/dbtest"
	"github.com/edelguur/admin-backend/pkg/logger"
	"github.com/edelguur/admin-backend/pkg/storage/storagetest"
)

func newTestRouter(t *testing.T) (http.Handler, *storagetest.Store) {
	t.Helper()
	store := storagetest.New()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := internalcatalog.NewService(internalcatalog.ServiceParams{
		DB:     dbtest.Open(t),
		Store:  store,
		Logger: logg,
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	for _, kind := range internalcatalog.FlatKinds {
		r.Route("/api/"+string(kind), func(r chi.Router) {
			r.Get("/", List(svc, kind, logg))
			r.Post("/", Create(svc, kind, logg))
			r.Get("/{id}", Get(svc, kind, logg))
			r.Put("/{id}", Update(svc, kind, logg))
			r.Delete("/{id}", Delete(svc, kind, logg))
		})
	}
	r.Get("/api/category", ListCategories(svc, logg))
	r.Post("/api/category", CreateCategory(svc, 1<<20, logg))
	r.Put("/api/category/{id}", UpdateCategory(svc, 1<<20, logg))
	r.Delete("/api/category/{id}", DeleteCategory(svc, logg))
	r.Post("/api/subcategory", CreateSubcategory(svc, logg))
	r.Get("/api/subcategory/{id}", GetSubcategory(svc, logg))
	return r, store
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, reader))
	return rec
}

func TestFlatKindRoutes(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := serve(h, http.MethodPost, "/api/brand", `{"name":"Acme","description":"tools"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Data internalcatalog.Entry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Acme", created.Data.Name)

	rec = serve(h, http.MethodPut, "/api/brand/1", `{"name":"Acme Co"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serve(h, http.MethodGet, "/api/brand/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Acme Co"`)

	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodPost, "/api/unit", `{"description":"nameless"}`).Code)
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/api/status/99", "").Code)

	rec = serve(h, http.MethodDelete, "/api/brand/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/api/brand/1", "").Code)
}

func TestCategoryMultipartWithImage(t *testing.T) {
	h, store := newTestRouter(t)
	body, contentType := storagetest.MultipartBody(t, map[string]string{"name": "Drinks"}, "image",
		storagetest.File{Name: "drinks.png", Body: storagetest.PNG})
	req := httptest.NewRequest(http.MethodPost, "/api/category", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Data internalcatalog.CategoryDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotNil(t, created.Data.ImageURL)
	assert.Len(t, store.Objects, 1)

	rec = serve(h, http.MethodGet, "/api/category", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"category_name":"Drinks"`)
}

func TestCategoryMultipartRequiresName(t *testing.T) {
	h, _ := newTestRouter(t)
	body, contentType := storagetest.MultipartBody(t, map[string]string{"description": "no name"}, "image")
	req := httptest.NewRequest(http.MethodPost, "/api/category", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategoryJSONAndSubcategory(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := serve(h, http.MethodPost, "/api/category", `{"name":"Snacks"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = serve(h, http.MethodPost, "/api/subcategory", `{"name":"Chips","category_id":1}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = serve(h, http.MethodGet, "/api/subcategory/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"category_name":"Snacks"`)

	rec = serve(h, http.MethodPost, "/api/subcategory", `{"name":"Orphan","category_id":42}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
