package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exproctor-backend/internal/config"
	"github.com/stemsi/exproctor-backend/internal/handler"
	"github.com/stemsi/exproctor-backend/internal/middleware"
	"github.com/stemsi/exproctor-backend/internal/model"
	"github.com/stemsi/exproctor-backend/internal/response"
)

// Authenticator validates tokens and single-device sessions.
type Authenticator interface {
	middleware.TokenValidator
	middleware.SessionValidator
}

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	Exam        *handler.ExamHandler
	Question    *handler.QuestionHandler
	Submission  *handler.SubmissionHandler
	CheatingLog *handler.CheatingLogHandler
	Coding      *handler.CodingHandler
	WS          *handler.WSHandler
	System      *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	auth Authenticator,
	handlers *Handlers,
	authLimiter *middleware.RateLimiter,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request ID first so the request logger can report it.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	compression := middleware.DefaultBrotliConfig
	compression.Skipper = func(c *gin.Context) bool { return c.Request.URL.Path == "/health" }
	router.Use(middleware.BrotliWithConfig(compression))

	router.GET("/health", handlers.System.Health)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	authAPI := router.Group("/api/v1/auth")
	{
		authAPI.POST("/register", authLimiter.Middleware(), handlers.Auth.Register)
		authAPI.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)
	}

	// ─── 2. Authenticated API (JWT + Single Device) ────────────────────
	// The session check only binds student tokens.
	api := router.Group("/api/v1")
	api.Use(
		middleware.RequireAuth(auth),
		middleware.CheckSingleDeviceSession(auth),
		middleware.NoStore(),
	)

	teacherOnly := middleware.RequireRole(model.RoleTeacher)
	studentOnly := middleware.RequireRole(model.RoleStudent)

	{
		api.POST("/auth/logout", handlers.Auth.Logout)
		api.GET("/auth/me", handlers.Auth.Me)

		// Exams
		api.GET("/exams", handlers.Exam.ListExams)
		api.GET("/exams/mine", teacherOnly, handlers.Exam.ListMyExams)
		api.POST("/exams", teacherOnly, handlers.Exam.CreateExam)
		api.GET("/exams/:exam_id", handlers.Exam.GetExam)
		api.PUT("/exams/:exam_id", teacherOnly, handlers.Exam.UpdateExam)
		api.DELETE("/exams/:exam_id", teacherOnly, handlers.Exam.DeleteExam)
		api.GET("/exams/:exam_id/questions", handlers.Exam.ListQuestions)

		// Questions
		api.POST("/questions", teacherOnly, handlers.Question.CreateQuestion)
		api.PUT("/questions/:question_id", teacherOnly, handlers.Question.UpdateQuestion)

		// Submissions and results
		api.POST("/submissions", studentOnly, handlers.Submission.SubmitExam)
		api.GET("/results/:exam_id", teacherOnly, handlers.Submission.ExamResults)
		api.GET("/results/:exam_id/:student_id", handlers.Submission.LearnerResult)
		api.GET("/students/me/stats", studentOnly, handlers.Submission.MyStats)
		api.GET("/students/me/last-submission", studentOnly, handlers.Submission.MyLastSubmission)
		api.GET("/teachers/me/submissions", teacherOnly, handlers.Submission.TeacherSubmissions)

		// Proctoring
		api.POST("/cheating-logs", studentOnly, handlers.CheatingLog.SaveCheatingLog)
		api.GET("/cheating-logs/:exam_id", teacherOnly, handlers.CheatingLog.ListCheatingLogs)
		api.GET("/cheating-logs/:exam_id/:student_id", teacherOnly, handlers.CheatingLog.LearnerCheatingLog)

		// Coding questions
		api.POST("/coding/submit", studentOnly, handlers.Coding.SubmitCode)
		api.GET("/coding/exams/:exam_token", handlers.Coding.GetCodingQuestion)
		api.GET("/coding/exams/:exam_token/submission", studentOnly, handlers.Coding.MyCodingSubmission)
	}

	// ─── 3. WebSocket Group (Student, token via query) ─────────────────
	ws := router.Group("/ws/v1")
	ws.Use(
		middleware.RequireAuth(auth),
		middleware.CheckSingleDeviceSession(auth),
		studentOnly,
	)
	{
		ws.GET("/proctor/exams/:exam_id/stream", handlers.WS.ProctorStream)
	}

	return router
}
