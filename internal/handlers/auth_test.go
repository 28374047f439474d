package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundbuddy/soundbuddy/internal/logger"
	"github.com/soundbuddy/soundbuddy/internal/repository/postgres"
	"github.com/soundbuddy/soundbuddy/internal/service/auth"
	"github.com/soundbuddy/soundbuddy/internal/service/auth/tokenmanager"
	"github.com/soundbuddy/soundbuddy/internal/service/booking"
	"github.com/soundbuddy/soundbuddy/internal/service/post"
	"github.com/soundbuddy/soundbuddy/internal/service/user"
	"github.com/soundbuddy/soundbuddy/internal/testutil"
)

// Run the full router over production services backed by the transaction
// Every test talks to the API exactly like the frontend does
func startServer(t *testing.T, tx pgx.Tx, pool *pgxpool.Pool) (*httptest.Server, *auth.AuthService) {
	t.Helper()

	log := logger.NewNoOpLogger()
	storage := postgres.NewStorage(tx)

	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
	}, storage.User())
	require.NoError(t, err, "token manager should be created without errors")

	authService, err := auth.NewService(auth.Config{}, tokenManager, storage.User())
	require.NoError(t, err, "auth service should be created without errors")

	router := NewRouter(
		NewAuth(authService, log),
		NewUser(user.NewService(storage.User()), log),
		NewPost(post.NewService(storage.Post()), log),
		NewBooking(booking.NewService(storage.Booking()), log),
		NewHealth(pool, log),
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv, authService
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "should read response body")
	require.NoError(t, resp.Body.Close())

	return string(body)
}

func Test_AuthHandler(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	registerBody := `{
		"name": "Nina Simone",
		"email": "nina@example.com",
		"password": "feeling-good",
		"userType": "musician",
		"tags": ["jazz", "piano"]
	}`

	register := func(t *testing.T, url string) (status int, body string, resp *http.Response) {
		resp, err := http.Post(url+"/api/users/create", "application/json", strings.NewReader(registerBody))
		require.NoError(t, err, "should make register request")
		return resp.StatusCode, readBody(t, resp), resp
	}

	t.Run("register ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			srv, _ := startServer(t, tx, pg.Pool)

			status, body, resp := register(t, srv.URL)

			require.Equalf(t, http.StatusCreated, status, "not expected code. Body: %s", body)

			var parsed struct {
				User struct {
					Name  string   `json:"name"`
					Email string   `json:"email"`
					Role  string   `json:"role"`
					Tags  []string `json:"tags"`
				} `json:"user"`
				AccessToken  string `json:"accessToken"`
				RefreshToken string `json:"refreshToken"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &parsed))
			assert.Equal(t, "Nina Simone", parsed.User.Name)
			assert.Equal(t, "nina@example.com", parsed.User.Email)
			assert.Equal(t, "musician", parsed.User.Role)
			assert.Equal(t, []string{"jazz", "piano"}, parsed.User.Tags)
			assert.NotEmpty(t, parsed.AccessToken, "access token should be in the body")
			assert.NotEmpty(t, parsed.RefreshToken, "refresh token should be in the body")

			assert.NotContains(t, body, "password", "password must never leak in any form")
			assert.NotContains(t, body, "feeling-good")

			require.Len(t, resp.Cookies(), 1)
			cookie := resp.Cookies()[0]
			assert.Equal(t, "refreshToken", cookie.Name)
			assert.Equal(t, parsed.RefreshToken, cookie.Value)
			assert.True(t, cookie.HttpOnly, "refresh cookie should be HttpOnly")
			assert.Equal(t, "/", cookie.Path)

			header := resp.Header.Get("Authorization")
			assert.Equal(t, "Bearer "+parsed.AccessToken, header)
		})
	})

	t.Run("register duplicate email", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			srv, _ := startServer(t, tx, pg.Pool)

			status, _, _ := register(t, srv.URL)
			require.Equal(t, http.StatusCreated, status)

			status, body, _ := register(t, srv.URL)

			require.Equalf(t, http.StatusBadRequest, status, "not expected code. Body: %s", body)
			require.JSONEq(t, `{"message": "User already exists"}`, body)
		})
	})

	t.Run("register validation failed", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			srv, _ := startServer(t, tx, pg.Pool)

			data := `{"name": "Nina", "email": "not-an-email", "password": "123"}`
			resp, err := http.Post(srv.URL+"/api/users/create", "application/json", strings.NewReader(data))
			require.NoError(t, err)
			body := readBody(t, resp)

			require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `{
				"message": "Request validation failed",
				"fields": {
					"email": "Must be a valid email address",
					"password": "Value is too short (minimum 6)"
				}
			}`, body)
		})
	})

	t.Run("login ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			srv, _ := startServer(t, tx, pg.Pool)

			status, registerResp, _ := register(t, srv.URL)
			require.Equal(t, http.StatusCreated, status)

			data := `{"email": "nina@example.com", "password": "feeling-good"}`
			resp, err := http.Post(srv.URL+"/api/login", "application/json", strings.NewReader(data))
			require.NoError(t, err)
			body := readBody(t, resp)

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			var registered, loggedIn struct {
				RefreshToken string `json:"refreshToken"`
			}
			require.NoError(t, json.Unmarshal([]byte(registerResp), &registered))
			require.NoError(t, json.Unmarshal([]byte(body), &loggedIn))
			assert.NotEmpty(t, loggedIn.RefreshToken)
			assert.NotEqual(t, registered.RefreshToken, loggedIn.RefreshToken, "login must rotate the refresh token")

			assert.Contains(t, body, `"lastLogin"`, "login time should appear after first login")
		})
	})

	t.Run("login wrong password", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			srv, _ := startServer(t, tx, pg.Pool)

			status, _, _ := register(t, srv.URL)
			require.Equal(t, http.StatusCreated, status)

			data := `{"email": "nina@example.com", "password": "wrong-password"}`
			resp, err := http.Post(srv.URL+"/api/login", "application/json", strings.NewReader(data))
			require.NoError(t, err)
			body := readBody(t, resp)

			require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `{"message": "Invalid email or password"}`, body)
			require.Empty(t, resp.Cookies(), "no cookies should be set on login error")
		})
	})

	t.Run("login unknown email answers the same", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			srv, _ := startServer(t, tx, pg.Pool)

			data := `{"email": "nobody@example.com", "password": "whatever"}`
			resp, err := http.Post(srv.URL+"/api/login", "application/json", strings.NewReader(data))
			require.NoError(t, err)
			body := readBody(t, resp)

			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			require.JSONEq(t, `{"message": "Invalid email or password"}`, body)
		})
	})

	t.Run("refresh", func(t *testing.T) {
		refreshWithCookie := func(t *testing.T, url string, token string) (*http.Response, string) {
			r, err := http.NewRequest(http.MethodGet, url+"/api/refresh-token", nil)
			require.NoError(t, err)
			r.AddCookie(&http.Cookie{Name: "refreshToken", Value: token})

			resp, err := http.DefaultClient.Do(r)
			require.NoError(t, err)
			return resp, readBody(t, resp)
		}

		t.Run("via cookie", func(t *testing.T) {
			testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
				srv, authService := startServer(t, tx, pg.Pool)

				_, pair, err := authService.Register(t.Context(), auth.RegisterParams{
					Name: "Nina", Email: "nina@example.com", Password: "feeling-good",
				})
				require.NoError(t, err)

				resp, body := refreshWithCookie(t, srv.URL, pair.Refresh.Value)

				require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

				var parsed struct {
					AccessToken  string `json:"accessToken"`
					RefreshToken string `json:"refreshToken"`
				}
				require.NoError(t, json.Unmarshal([]byte(body), &parsed))
				assert.NotEmpty(t, parsed.AccessToken)
				assert.NotEqual(t, pair.Refresh.Value, parsed.RefreshToken, "refresh must rotate the token")

				require.Len(t, resp.Cookies(), 1, "new refresh token should be set as cookie")
				assert.Equal(t, parsed.RefreshToken, resp.Cookies()[0].Value)
			})
		})

		t.Run("via authorization header", func(t *testing.T) {
			testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
				srv, authService := startServer(t, tx, pg.Pool)

				_, pair, err := authService.Register(t.Context(), auth.RegisterParams{
					Name: "Nina", Email: "nina@example.com", Password: "feeling-good",
				})
				require.NoError(t, err)

				r, err := http.NewRequest(http.MethodGet, srv.URL+"/api/refresh-token", nil)
				require.NoError(t, err)
				r.Header.Set("Authorization", "Bearer "+pair.Refresh.Value)

				resp, err := http.DefaultClient.Do(r)
				require.NoError(t, err)
				body := readBody(t, resp)

				require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			})
		})

		t.Run("replay of rotated token", func(t *testing.T) {
			testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
				srv, authService := startServer(t, tx, pg.Pool)

				_, pair, err := authService.Register(t.Context(), auth.RegisterParams{
					Name: "Nina", Email: "nina@example.com", Password: "feeling-good",
				})
				require.NoError(t, err)

				resp, body := refreshWithCookie(t, srv.URL, pair.Refresh.Value)
				require.Equalf(t, http.StatusOK, resp.StatusCode, "first refresh should pass. Body: %s", body)

				resp, body = refreshWithCookie(t, srv.URL, pair.Refresh.Value)

				require.Equalf(t, http.StatusForbidden, resp.StatusCode, "not expected code. Body: %s", body)
				require.JSONEq(t, `{"message": "Token not associated with any user"}`, body)
			})
		})

		t.Run("garbage token", func(t *testing.T) {
			testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
				srv, _ := startServer(t, tx, pg.Pool)

				resp, body := refreshWithCookie(t, srv.URL, "not-a-token")

				require.Equalf(t, http.StatusForbidden, resp.StatusCode, "not expected code. Body: %s", body)
				require.JSONEq(t, `{"message": "Invalid refresh token"}`, body)
			})
		})

		t.Run("no token at all", func(t *testing.T) {
			testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
				srv, _ := startServer(t, tx, pg.Pool)

				resp, err := http.Get(srv.URL + "/api/refresh-token")
				require.NoError(t, err)
				body := readBody(t, resp)

				require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
				require.JSONEq(t, `{"message": "Refresh token not provided"}`, body)
			})
		})
	})

	t.Run("logout", func(t *testing.T) {
		logout := func(t *testing.T, url string, access string) (*http.Response, string) {
			r, err := http.NewRequest(http.MethodPost, url+"/api/logout", nil)
			require.NoError(t, err)
			if access != "" {
				r.Header.Set("Authorization", "Bearer "+access)
			}

			resp, err := http.DefaultClient.Do(r)
			require.NoError(t, err)
			return resp, readBody(t, resp)
		}

		t.Run("ok", func(t *testing.T) {
			testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
				srv, authService := startServer(t, tx, pg.Pool)

				_, pair, err := authService.Register(t.Context(), auth.RegisterParams{
					Name: "Nina", Email: "nina@example.com", Password: "feeling-good",
				})
				require.NoError(t, err)

				resp, body := logout(t, srv.URL, pair.Access.Value)

				require.Equalf(t, http.StatusNoContent, resp.StatusCode, "not expected code. Body: %s", body)
				require.Empty(t, body)

				require.Len(t, resp.Cookies(), 1)
				cookie := resp.Cookies()[0]
				assert.Equal(t, "refreshToken", cookie.Name)
				assert.Empty(t, cookie.Value)
				assert.Negative(t, cookie.MaxAge, "refresh cookie must be expired on logout")

				// The stored refresh token is gone, refreshing is over
				_, err = authService.RefreshPair(t.Context(), pair.Refresh.Value)
				require.Error(t, err)
			})
		})

		t.Run("no token", func(t *testing.T) {
			testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
				srv, _ := startServer(t, tx, pg.Pool)

				resp, body := logout(t, srv.URL, "")

				require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
				require.JSONEq(t, `{"message": "Unauthorized"}`, body)
			})
		})

		t.Run("garbage token", func(t *testing.T) {
			testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
				srv, _ := startServer(t, tx, pg.Pool)

				resp, body := logout(t, srv.URL, "not-a-token")

				require.Equalf(t, http.StatusForbidden, resp.StatusCode, "not expected code. Body: %s", body)
				require.JSONEq(t, `{"message": "Forbidden"}`, body)
			})
		})
	})
}
