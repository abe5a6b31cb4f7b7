package users_controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	user_dto "timebridge/internal/features/users/dto"
	users_services "timebridge/internal/features/users/services"
	"timebridge/internal/storage"
	test_utils "timebridge/internal/util/testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

const selectUserByEmail = `SELECT \* FROM "users" WHERE email = \$1`

var userColumns = []string{"id", "email", "hashed_password", "role_id", "status"}

func useMockDb(t *testing.T) sqlmock.Sqlmock {
	sqlDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDb.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDb}), &gorm.Config{
		Logger:                 gorm_logger.Default.LogMode(gorm_logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	storage.UseDb(db)
	return mock
}

func newSignInRouter(limiter *rate.Limiter) *gin.Engine {
	gin.SetMode(gin.TestMode)

	controller := &UserController{
		userService:   users_services.GetUserService(),
		signinLimiter: limiter,
	}

	router := gin.New()
	controller.RegisterRoutes(router.Group(""))
	return router
}

func errorOf(t *testing.T, response *test_utils.TestResponse) string {
	var body map[string]string
	require.NoError(t, json.Unmarshal(response.Body, &body))
	return body["error"]
}

func Test_SignIn_WithUnknownEmail_Returns401WithoutNamingTheCause(t *testing.T) {
	mock := useMockDb(t)
	mock.ExpectQuery(selectUserByEmail).WillReturnRows(sqlmock.NewRows(userColumns))

	router := newSignInRouter(rate.NewLimiter(rate.Inf, 1))
	response := test_utils.MakePostRequest(t, router, "/users/signin", "",
		user_dto.SignInRequestDTO{Email: "ghost@example.com", Password: "whatever1"},
		http.StatusUnauthorized)

	assert.Equal(t, "invalid email or password", errorOf(t, response))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_SignIn_WithWrongPassword_ReturnsSame401(t *testing.T) {
	mock := useMockDb(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	mock.ExpectQuery(selectUserByEmail).WillReturnRows(sqlmock.NewRows(userColumns).
		AddRow(uuid.New().String(), "ana@example.com", string(hash), "subcontractor", "ACTIVE"))

	router := newSignInRouter(rate.NewLimiter(rate.Inf, 1))
	response := test_utils.MakePostRequest(t, router, "/users/signin", "",
		user_dto.SignInRequestDTO{Email: "ana@example.com", Password: "battery-staple"},
		http.StatusUnauthorized)

	assert.Equal(t, "invalid email or password", errorOf(t, response))
}

func Test_SignIn_WithPendingInvitation_Returns403(t *testing.T) {
	mock := useMockDb(t)
	mock.ExpectQuery(selectUserByEmail).WillReturnRows(sqlmock.NewRows(userColumns).
		AddRow(uuid.New().String(), "ana@example.com", nil, "subcontractor", "INVITED"))

	router := newSignInRouter(rate.NewLimiter(rate.Inf, 1))
	test_utils.MakePostRequest(t, router, "/users/signin", "",
		user_dto.SignInRequestDTO{Email: "ana@example.com", Password: "whatever1"},
		http.StatusForbidden)
}

func Test_SignIn_WhenLimiterExhausted_Returns429BeforeTouchingStorage(t *testing.T) {
	mock := useMockDb(t)

	router := newSignInRouter(rate.NewLimiter(rate.Limit(0), 0))
	test_utils.MakePostRequest(t, router, "/users/signin", "",
		user_dto.SignInRequestDTO{Email: "ana@example.com", Password: "whatever1"},
		http.StatusTooManyRequests)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_SignUp_WithoutInvitation_Returns403(t *testing.T) {
	mock := useMockDb(t)
	mock.ExpectQuery(selectUserByEmail).WillReturnRows(sqlmock.NewRows(userColumns))

	router := newSignInRouter(rate.NewLimiter(rate.Inf, 1))
	test_utils.MakePostRequest(t, router, "/users/signup", "",
		user_dto.SignUpRequestDTO{Email: "stranger@example.com", Password: "long-enough"},
		http.StatusForbidden)
}
