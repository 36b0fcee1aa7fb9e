package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/scifunedu/scifun_backend/handlers"
	"github.com/scifunedu/scifun_backend/middleware"
)

func StudentRoutes(app *fiber.App, students *handlers.StudentHandler, profiles *handlers.ProfileHandler, attendance *handlers.AttendanceHandler) {
	api := app.Group("/api/v1")

	me := api.Group("/students/me", middleware.Protected())
	me.Get("/dashboard", students.GetDashboard)
	me.Get("/referrals", students.GetMyReferrals)
	me.Post("/referrals/redeem", students.RedeemReferral)
	me.Get("/attendance", attendance.GetMyAttendance)

	profile := api.Group("/profile/me", middleware.Protected())
	profile.Get("", profiles.GetProfile)
	profile.Put("", profiles.UpdateProfile)
}
