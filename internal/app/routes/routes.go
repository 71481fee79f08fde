package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/schoolbook/internal/app/controllers"
	"github.com/yigit/schoolbook/internal/middleware"
)

// Controllers groups the handlers mounted under /api/v1
type Controllers struct {
	Students    *controllers.StudentController
	Instructors *controllers.InstructorController
	Courses     *controllers.CourseController
	Data        *controllers.DataController
	Search      *controllers.SearchController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrl Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/health", ctrl.Search.Health)

	// API version group
	v1 := router.Group("/api/v1")

	// --- Public read routes ---
	v1.GET("/search", ctrl.Search.Search)
	v1.GET("/stats", ctrl.Search.Stats)
	v1.GET("/students", ctrl.Students.ListStudents)
	v1.GET("/students/:id", ctrl.Students.GetStudent)
	v1.GET("/instructors", ctrl.Instructors.ListInstructors)
	v1.GET("/instructors/:id", ctrl.Instructors.GetInstructor)
	v1.GET("/courses", ctrl.Courses.ListCourses)
	v1.GET("/courses/:id", ctrl.Courses.GetCourse)
	v1.GET("/data/export", ctrl.Data.Download)
	v1.GET("/data/files", ctrl.Data.ListFiles)
	v1.GET("/data/files/*name", ctrl.Data.DownloadFile)

	// --- Operator routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	students := authenticated.Group("/students")
	{
		students.POST("", ctrl.Students.CreateStudent)
		students.PATCH("/:id", ctrl.Students.UpdateStudent)
		students.DELETE("/:id", ctrl.Students.DeleteStudent)
		students.PUT("/:id/courses/:courseId", ctrl.Students.RegisterCourse)
		students.DELETE("/:id/courses/:courseId", ctrl.Students.UnregisterCourse)
	}

	instructors := authenticated.Group("/instructors")
	{
		instructors.POST("", ctrl.Instructors.CreateInstructor)
		instructors.PATCH("/:id", ctrl.Instructors.UpdateInstructor)
		instructors.DELETE("/:id", ctrl.Instructors.DeleteInstructor)
	}

	courses := authenticated.Group("/courses")
	{
		courses.POST("", ctrl.Courses.CreateCourse)
		courses.PATCH("/:id", ctrl.Courses.UpdateCourse)
		courses.DELETE("/:id", ctrl.Courses.DeleteCourse)
		courses.PUT("/:id/instructor", ctrl.Courses.AssignInstructor)
		courses.DELETE("/:id/instructor", ctrl.Courses.UnassignInstructor)
	}

	data := authenticated.Group("/data")
	{
		data.POST("/save", ctrl.Data.Save)
		data.POST("/load", ctrl.Data.Load)
		data.POST("/export", ctrl.Data.Export)
		data.POST("/import", ctrl.Data.Import)
		data.POST("/backup", ctrl.Data.Backup)
		data.POST("/restore", ctrl.Data.Restore)
		data.POST("/archive", ctrl.Data.Archive)
		data.DELETE("/files/*name", ctrl.Data.DeleteFile)
	}
}
