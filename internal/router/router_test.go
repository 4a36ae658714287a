package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/franciscosanchezn/foodgram-api/internal/auth"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/franciscosanchezn/foodgram-api/internal/shoppinglist"
	"github.com/franciscosanchezn/foodgram-api/internal/storage"
	"github.com/franciscosanchezn/foodgram-api/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
	oauth  *auth.OAuthService
}

func newTestServer(t *testing.T, configure ...func(*Deps)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t)
	mediaRoot := t.TempDir()
	store, err := storage.NewLocalStore(mediaRoot, "http://testserver/media")
	require.NoError(t, err)

	users := services.NewUserService(db)
	oauthService := auth.NewOAuthService(db, users, auth.Options{
		JWTSecret: "router-test-secret",
		TokenTTL:  time.Hour,
		ClientID:  "foodgram-web",
	})
	require.NoError(t, oauthService.EnsureClient(context.Background()))

	renderer, err := shoppinglist.NewRenderer("")
	require.NoError(t, err)

	deps := Deps{
		DB:                db,
		OAuth:             oauthService,
		Users:             users,
		Recipes:           services.NewRecipeService(db, store),
		Tags:              services.NewTagService(db),
		Ingred:            services.NewIngredientService(db),
		Renderer:          renderer,
		RecipeCreateLimit: 30,
		PageSize:          6,
		MediaRoot:         mediaRoot,
	}
	for _, fn := range configure {
		fn(&deps)
	}

	router, err := Setup(deps)
	require.NoError(t, err)
	return &testServer{t: t, router: router, db: db, oauth: oauthService}
}

func (s *testServer) token(user *models.User) string {
	s.t.Helper()
	info, err := s.oauth.IssueToken(context.Background(), user)
	require.NoError(s.t, err)
	return info.GetAccess()
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func recipePayload(name string, tagID uint, lines ...[2]uint) map[string]interface{} {
	ingredients := make([]map[string]interface{}, len(lines))
	for i, line := range lines {
		ingredients[i] = map[string]interface{}{"id": line[0], "amount": line[1]}
	}
	return map[string]interface{}{
		"name":         name,
		"text":         "Whisk and bake.",
		"cooking_time": 25,
		"image":        testutil.PNGDataURI(),
		"tags":         []uint{tagID},
		"ingredients":  ingredients,
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decodeMap(t, w)["status"])

	w = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "foodgram_api_requests_total")
}

func TestRegisterLoginAndLogout(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/users/", "", map[string]string{
		"email":      "chef@example.com",
		"username":   "chef",
		"first_name": "Gordon",
		"last_name":  "Chef",
		"password":   "s3cretpass",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeMap(t, w)
	assert.Equal(t, "chef", created["username"])
	assert.NotContains(t, created, "password")
	assert.NotContains(t, created, "is_subscribed")

	w = s.do(http.MethodPost, "/api/auth/token/login/", "", map[string]string{
		"email": "chef@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/auth/token/login/", "", map[string]string{
		"email": "chef@example.com", "password": "s3cretpass",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := decodeMap(t, w)["auth_token"].(string)
	require.NotEmpty(t, token)

	w = s.do(http.MethodGet, "/api/users/me/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "chef@example.com", decodeMap(t, w)["email"])

	w = s.do(http.MethodPost, "/api/auth/token/logout/", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/api/users/me/", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "taken")

	tests := []struct {
		name  string
		body  map[string]string
		field string
	}{
		{"missing email", map[string]string{"username": "a", "first_name": "A", "last_name": "B", "password": "password123"}, "email"},
		{"bad username", map[string]string{"email": "a@example.com", "username": "bad name!", "first_name": "A", "last_name": "B", "password": "password123"}, "username"},
		{"short password", map[string]string{"email": "a@example.com", "username": "a", "first_name": "A", "last_name": "B", "password": "short"}, "password"},
		{"duplicate username", map[string]string{"email": "new@example.com", "username": "taken", "first_name": "A", "last_name": "B", "password": "password123"}, "username"},
		{"duplicate email", map[string]string{"email": "taken@example.com", "username": "fresh", "first_name": "A", "last_name": "B", "password": "password123"}, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/users/", "", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, decodeMap(t, w), tt.field)
		})
	}
}

func TestOAuthTokenEndpoint(t *testing.T) {
	s := newTestServer(t)
	user := testutil.CreateUser(t, s.db, "alice")

	form := url.Values{
		"grant_type": {"password"},
		"client_id":  {"foodgram-web"},
		"username":   {user.Email},
		"password":   {"password123"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/oauth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	access, _ := decodeMap(t, w)["access_token"].(string)
	require.NotEmpty(t, access)

	// Bearer scheme works as well as Token
	req = httptest.NewRequest(http.MethodGet, "/api/users/me/", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecipeLifecycle(t *testing.T) {
	s := newTestServer(t)
	author := testutil.CreateUser(t, s.db, "author")
	reader := testutil.CreateUser(t, s.db, "reader")
	authorToken, readerToken := s.token(author), s.token(reader)

	breakfast := testutil.CreateTag(t, s.db, "Breakfast", "breakfast")
	eggs := testutil.CreateIngredient(t, s.db, "eggs", "pcs")
	flour := testutil.CreateIngredient(t, s.db, "flour", "g")

	// Anonymous users cannot create
	w := s.do(http.MethodPost, "/api/recipes/", "", recipePayload("Pancakes", breakfast.ID, [2]uint{eggs.ID, 2}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/recipes/", authorToken,
		recipePayload("Pancakes", breakfast.ID, [2]uint{eggs.ID, 2}, [2]uint{flour.ID, 100}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeMap(t, w)
	recipeID := uint(created["id"].(float64))
	assert.Equal(t, "Pancakes", created["name"])
	assert.Equal(t, false, created["is_favorited"])
	assert.True(t, strings.HasPrefix(created["image"].(string), "http://testserver/media/recipes/"))
	assert.Len(t, created["ingredients"], 2)
	assert.Len(t, created["tags"], 1)
	authorBody := created["author"].(map[string]interface{})
	assert.Equal(t, "author", authorBody["username"])

	// The stored image is served from /media
	imagePath := strings.TrimPrefix(created["image"].(string), "http://testserver")
	w = s.do(http.MethodGet, imagePath, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Validation errors are keyed by field
	invalid := recipePayload("Broken", breakfast.ID, [2]uint{eggs.ID, 2}, [2]uint{eggs.ID, 3})
	invalid["cooking_time"] = 0
	w = s.do(http.MethodPost, "/api/recipes/", authorToken, invalid)
	require.Equal(t, http.StatusBadRequest, w.Code)
	errs := decodeMap(t, w)
	assert.Contains(t, errs, "ingredients")
	assert.Contains(t, errs, "cooking_time")

	// Only the author may edit
	patch := map[string]interface{}{
		"name":        "Fluffy pancakes",
		"tags":        []uint{breakfast.ID},
		"ingredients": []map[string]interface{}{{"id": eggs.ID, "amount": 3}},
	}
	w = s.do(http.MethodPatch, fmt.Sprintf("/api/recipes/%d/", recipeID), readerToken, patch)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPatch, fmt.Sprintf("/api/recipes/%d/", recipeID), authorToken, patch)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeMap(t, w)
	assert.Equal(t, "Fluffy pancakes", updated["name"])
	assert.Len(t, updated["ingredients"], 1)
	assert.Equal(t, float64(25), updated["cooking_time"])

	w = s.do(http.MethodGet, "/api/recipes/abc/", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/recipes/%d/", recipeID), readerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/recipes/%d/", recipeID), authorToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/recipes/%d/", recipeID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found.", decodeMap(t, w)["detail"])
}

func TestFavoritesCartAndShoppingList(t *testing.T) {
	s := newTestServer(t)
	author := testutil.CreateUser(t, s.db, "author")
	shopper := testutil.CreateUser(t, s.db, "shopper")
	token := s.token(shopper)

	eggs := testutil.CreateIngredient(t, s.db, "eggs", "pcs")
	flour := testutil.CreateIngredient(t, s.db, "flour", "g")
	omelette := testutil.CreateRecipe(t, s.db, author, "Omelette", []models.RecipeIngredient{testutil.Line(eggs, 3)})
	cake := testutil.CreateRecipe(t, s.db, author, "Cake", []models.RecipeIngredient{testutil.Line(eggs, 2), testutil.Line(flour, 100)})
	testutil.CreateRecipe(t, s.db, author, "Bread", []models.RecipeIngredient{testutil.Line(flour, 500)})

	w := s.do(http.MethodPost, fmt.Sprintf("/api/recipes/%d/favorite/", omelette.ID), token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	short := decodeMap(t, w)
	assert.Equal(t, "Omelette", short["name"])
	assert.ElementsMatch(t, []string{"id", "name", "image", "cooking_time"}, keys(short))

	w = s.do(http.MethodPost, fmt.Sprintf("/api/recipes/%d/favorite/", omelette.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, decodeMap(t, w)["errors"])

	w = s.do(http.MethodPost, "/api/recipes/9999/favorite/", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Filters only narrow for the requesting user
	w = s.do(http.MethodGet, "/api/recipes/?is_favorited=1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decodeMap(t, w)
	assert.Equal(t, float64(1), page["count"])
	first := page["results"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, true, first["is_favorited"])

	w = s.do(http.MethodGet, "/api/recipes/?is_favorited=1", "", nil)
	assert.Equal(t, float64(3), decodeMap(t, w)["count"])

	for _, recipe := range []*models.Recipe{omelette, cake} {
		w = s.do(http.MethodPost, fmt.Sprintf("/api/recipes/%d/shopping_cart/", recipe.ID), token, nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = s.do(http.MethodGet, "/api/recipes/download_shopping_cart/?format=txt", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="shopping_list.txt"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "1. eggs - 5 pcs")
	assert.Contains(t, w.Body.String(), "2. flour - 100 g")

	w = s.do(http.MethodGet, "/api/recipes/download_shopping_cart/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = s.do(http.MethodGet, "/api/recipes/download_shopping_cart/?format=doc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/recipes/download_shopping_cart/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/recipes/%d/shopping_cart/", cake.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(http.MethodDelete, fmt.Sprintf("/api/recipes/%d/shopping_cart/", cake.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, decodeMap(t, w)["errors"])
}

func TestRecipeListPaginationAndFilters(t *testing.T) {
	s := newTestServer(t)
	alice := testutil.CreateUser(t, s.db, "alice")
	bob := testutil.CreateUser(t, s.db, "bob")
	salt := testutil.CreateIngredient(t, s.db, "salt", "g")
	lunch := testutil.CreateTag(t, s.db, "Lunch", "lunch")
	dinner := testutil.CreateTag(t, s.db, "Dinner", "dinner")

	for i := 0; i < 7; i++ {
		testutil.CreateRecipe(t, s.db, alice, fmt.Sprintf("alice-%d", i), []models.RecipeIngredient{testutil.Line(salt, 1)}, *lunch)
	}
	testutil.CreateRecipe(t, s.db, bob, "bob-dinner", []models.RecipeIngredient{testutil.Line(salt, 1)}, *dinner)

	w := s.do(http.MethodGet, "/api/recipes/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decodeMap(t, w)
	assert.Equal(t, float64(8), page["count"])
	assert.Len(t, page["results"], 6)
	assert.Nil(t, page["previous"])
	assert.Equal(t, "http://example.com/api/recipes/?page=2", page["next"])
	newest := page["results"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "bob-dinner", newest["name"])

	w = s.do(http.MethodGet, "/api/recipes/?page=2", "", nil)
	page = decodeMap(t, w)
	assert.Len(t, page["results"], 2)
	assert.Nil(t, page["next"])
	assert.Equal(t, "http://example.com/api/recipes/", page["previous"])

	w = s.do(http.MethodGet, fmt.Sprintf("/api/recipes/?author=%d&limit=3", bob.ID), "", nil)
	assert.Equal(t, float64(1), decodeMap(t, w)["count"])

	w = s.do(http.MethodGet, "/api/recipes/?tags=dinner&tags=lunch", "", nil)
	assert.Equal(t, float64(8), decodeMap(t, w)["count"])

	w = s.do(http.MethodGet, "/api/recipes/?tags=dinner", "", nil)
	assert.Equal(t, float64(1), decodeMap(t, w)["count"])

	w = s.do(http.MethodGet, "/api/recipes/?author=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscriptions(t *testing.T) {
	s := newTestServer(t)
	fan := testutil.CreateUser(t, s.db, "fan")
	chef := testutil.CreateUser(t, s.db, "chef")
	token := s.token(fan)
	salt := testutil.CreateIngredient(t, s.db, "salt", "g")
	for i := 0; i < 3; i++ {
		testutil.CreateRecipe(t, s.db, chef, fmt.Sprintf("dish-%d", i), []models.RecipeIngredient{testutil.Line(salt, 1)})
	}

	w := s.do(http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe/?recipes_limit=2", chef.ID), token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sub := decodeMap(t, w)
	assert.Equal(t, true, sub["is_subscribed"])
	assert.Equal(t, float64(3), sub["recipes_count"])
	assert.Len(t, sub["recipes"], 2)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe/", chef.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe/", fan.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/users/9999/subscribe/", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/users/%d/", chef.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeMap(t, w)["is_subscribed"])

	w = s.do(http.MethodGet, fmt.Sprintf("/api/users/%d/", chef.ID), "", nil)
	assert.Equal(t, false, decodeMap(t, w)["is_subscribed"])

	w = s.do(http.MethodGet, "/api/users/subscriptions/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decodeMap(t, w)
	assert.Equal(t, float64(1), page["count"])
	first := page["results"].([]interface{})[0].(map[string]interface{})
	assert.Len(t, first["recipes"], 3)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/users/%d/subscribe/", chef.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(http.MethodDelete, fmt.Sprintf("/api/users/%d/subscribe/", chef.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetPassword(t *testing.T) {
	s := newTestServer(t)
	user := testutil.CreateUser(t, s.db, "alice")
	token := s.token(user)

	w := s.do(http.MethodPost, "/api/users/set_password/", token, map[string]string{
		"current_password": "nope", "new_password": "brand-new-pass",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/users/set_password/", token, map[string]string{
		"current_password": "password123", "new_password": "brand-new-pass",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodPost, "/api/auth/token/login/", "", map[string]string{
		"email": user.Email, "password": "brand-new-pass",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCatalogueAdminOnlyWrites(t *testing.T) {
	s := newTestServer(t)
	user := testutil.CreateUser(t, s.db, "user")
	admin := testutil.CreateUser(t, s.db, "admin")
	require.NoError(t, s.db.Model(admin).Update("role", models.RoleAdmin).Error)
	userToken, adminToken := s.token(user), s.token(admin)

	tag := map[string]string{"name": "Vegan", "color": "#00FF00", "slug": "vegan"}
	w := s.do(http.MethodPost, "/api/tags/", userToken, tag)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/tags/", adminToken, tag)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tagID := uint(decodeMap(t, w)["id"].(float64))

	w = s.do(http.MethodPost, "/api/tags/", adminToken, map[string]string{"name": "Bad", "slug": "no spaces"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeMap(t, w), "slug")

	w = s.do(http.MethodPatch, fmt.Sprintf("/api/tags/%d/", tagID), adminToken, map[string]string{"name": "Plant based"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "vegan", decodeMap(t, w)["slug"])

	w = s.do(http.MethodGet, "/api/tags/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tags []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tags))
	assert.Len(t, tags, 1)

	ingredient := map[string]string{"name": "Tofu", "measurement_unit": "g"}
	w = s.do(http.MethodPost, "/api/ingredients/", userToken, ingredient)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(http.MethodPost, "/api/ingredients/", adminToken, ingredient)
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.do(http.MethodPost, "/api/ingredients/", adminToken, ingredient)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/ingredients/?name=to", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ingredients []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ingredients))
	require.Len(t, ingredients, 1)
	assert.Equal(t, "g", ingredients[0]["measurement_unit"])

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/tags/%d/", tagID), adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRecipeCreationIsRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := newTestServer(t, func(d *Deps) {
		d.Redis = client
		d.RecipeCreateLimit = 1
	})
	author := testutil.CreateUser(t, s.db, "author")
	token := s.token(author)
	tag := testutil.CreateTag(t, s.db, "Snack", "snack")
	salt := testutil.CreateIngredient(t, s.db, "salt", "g")

	w := s.do(http.MethodPost, "/api/recipes/", token, recipePayload("Chips", tag.ID, [2]uint{salt.ID, 5}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/recipes/", token, recipePayload("More chips", tag.ID, [2]uint{salt.ID, 5}))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
