package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/scifunedu/scifun_backend/handlers"
	"github.com/scifunedu/scifun_backend/middleware"
)

func AdminRoutes(app *fiber.App, fees *handlers.FeeHandler, referrals *handlers.ReferralHandler, admin *handlers.AdminHandler, attendance *handlers.AttendanceHandler) {
	api := app.Group("/api/v1")

	adm := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	adm.Get("/dashboard-analytics", admin.GetDashboardAnalytics)
	adm.Get("/students", admin.ListStudents)
	adm.Put("/users/:userId/status", admin.ToggleUserStatus)

	feeGroup := adm.Group("/fees")
	feeGroup.Get("/students", fees.SearchStudent)
	feeGroup.Post("/students/:studentId/payments", fees.CollectFee)
	feeGroup.Post("/students/:studentId/adjustments", fees.AddAdjustment)

	referralGroup := adm.Group("/referrals")
	referralGroup.Get("", referrals.ListAll)
	referralGroup.Post("/:referralId/approve", referrals.Approve)
	referralGroup.Post("/:referralId/reject", referrals.Reject)

	attendanceGroup := adm.Group("/attendance")
	attendanceGroup.Get("/batches", attendance.GetBatches)
	attendanceGroup.Get("/students", attendance.GetBatchStudents)
	attendanceGroup.Post("", attendance.SubmitAttendance)
}
