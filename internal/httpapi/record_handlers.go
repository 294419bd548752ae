package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrms.org/internal/audit"
	"hrms.org/internal/records"
)

func (a *API) directoryRoutes(r chi.Router) {
	r.Get("/users", a.listUsers)
	r.Get("/users/{user_id}", a.getUser)
	r.Get("/dashboard/stats", a.dashboard)
}

func (a *API) onboardingRoutes(r chi.Router) {
	r.Post("/onboarding/create", a.createOnboarding)
	r.Get("/onboarding/{user_id}", a.getOnboarding)
	r.Put("/onboarding/update/{user_id}", a.updateOnboarding)
}

func (a *API) payrollRoutes(r chi.Router) {
	r.Post("/payroll/create", a.createPayroll)
	r.Get("/payroll/{user_id}", a.getPayroll)
	r.Post("/payroll/add-payment/{user_id}", a.addPayment)
}

func (a *API) performanceRoutes(r chi.Router) {
	r.Post("/performance/goal/create", a.createGoal)
	r.Get("/performance/goals/{user_id}", a.listGoals)
	r.Post("/performance/task/create", a.createTask)
	r.Get("/performance/tasks/{user_id}", a.listTasks)
	r.Put("/performance/task/update/{task_id}", a.updateTask)
	r.Post("/performance/feedback/create", a.createFeedback)
	r.Get("/performance/feedback/{user_id}", a.listFeedback)
}

func (a *API) attendanceRoutes(r chi.Router) {
	r.Post("/attendance/checkin", a.checkIn)
	r.Post("/attendance/checkout", a.checkOut)
	r.Get("/attendance/overview/{user_id}", a.attendanceOverview)
	r.Post("/attendance/leave/apply", a.applyLeave)
	r.Get("/attendance/leaves/{user_id}", a.listLeaves)
	r.Put("/attendance/leave/approve/{leave_id}", a.decideLeave)
}

// respond writes v as 200 or maps err.
func respond[T any](w http.ResponseWriter, r *http.Request, v T, err error) {
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// created writes a creation acknowledgement and audits it.
func created(w http.ResponseWriter, r *http.Request, event, msg string, v any, fields map[string]any) {
	_ = audit.LogEvent(r.Context(), event, fields)
	writeJSON(w, http.StatusCreated, message{Message: msg, Data: v})
}

// --- directory ---

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.records.Users(r.Context(), requester(r))
	respond(w, r, users, err)
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.records.User(r.Context(), requester(r), chi.URLParam(r, "user_id"))
	respond(w, r, user, err)
}

func (a *API) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := a.records.Dashboard(r.Context(), requester(r))
	respond(w, r, d, err)
}

// --- onboarding ---

func (a *API) createOnboarding(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	o, err := a.records.CreateOnboarding(r.Context(), requester(r), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	created(w, r, "onboarding.created", "Onboarding record created", o, map[string]any{"user_id": userID})
}

func (a *API) getOnboarding(w http.ResponseWriter, r *http.Request) {
	o, err := a.records.Onboarding(r.Context(), requester(r), chi.URLParam(r, "user_id"))
	respond(w, r, o, err)
}

func (a *API) updateOnboarding(w http.ResponseWriter, r *http.Request) {
	var upd records.OnboardingUpdate
	if err := decodeJSON(r, &upd); err != nil {
		respondError(w, r, err)
		return
	}
	userID := chi.URLParam(r, "user_id")
	o, err := a.records.UpdateOnboarding(r.Context(), requester(r), userID, upd)
	if err != nil {
		respondError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "onboarding.updated", map[string]any{"user_id": userID})
	writeJSON(w, http.StatusOK, message{Message: "Onboarding updated successfully", Data: o})
}

// --- payroll ---

func (a *API) createPayroll(w http.ResponseWriter, r *http.Request) {
	var in records.PayrollInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	p, err := a.records.CreatePayroll(r.Context(), requester(r), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	created(w, r, "payroll.created", "Payroll record created", p, map[string]any{"user_id": p.UserID})
}

func (a *API) getPayroll(w http.ResponseWriter, r *http.Request) {
	p, err := a.records.Payroll(r.Context(), requester(r), chi.URLParam(r, "user_id"))
	respond(w, r, p, err)
}

func (a *API) addPayment(w http.ResponseWriter, r *http.Request) {
	var in records.PaymentInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	userID := chi.URLParam(r, "user_id")
	p, err := a.records.AddPayment(r.Context(), requester(r), userID, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	created(w, r, "payroll.payment_added", "Payment added successfully", p, map[string]any{
		"user_id":    userID,
		"payment_id": p.ID,
	})
}

// --- performance ---

func (a *API) createGoal(w http.ResponseWriter, r *http.Request) {
	var in records.GoalInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	g, err := a.records.CreateGoal(r.Context(), requester(r), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	created(w, r, "performance.goal_created", "Goal created successfully", g, map[string]any{"user_id": g.UserID})
}

func (a *API) listGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := a.records.Goals(r.Context(), requester(r), chi.URLParam(r, "user_id"))
	respond(w, r, goals, err)
}

func (a *API) createTask(w http.ResponseWriter, r *http.Request) {
	var in records.TaskInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	t, err := a.records.CreateTask(r.Context(), requester(r), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	created(w, r, "performance.task_created", "Task created successfully", t, map[string]any{"user_id": t.UserID})
}

func (a *API) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := a.records.Tasks(r.Context(), requester(r), chi.URLParam(r, "user_id"))
	respond(w, r, tasks, err)
}

func (a *API) updateTask(w http.ResponseWriter, r *http.Request) {
	var upd records.TaskUpdate
	if err := decodeJSON(r, &upd); err != nil {
		respondError(w, r, err)
		return
	}
	t, err := a.records.UpdateTask(r.Context(), requester(r), chi.URLParam(r, "task_id"), upd)
	if err != nil {
		respondError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "performance.task_updated", map[string]any{"task_id": t.ID})
	writeJSON(w, http.StatusOK, message{Message: "Task updated successfully", Data: t})
}

func (a *API) createFeedback(w http.ResponseWriter, r *http.Request) {
	var in records.FeedbackInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	f, err := a.records.CreateFeedback(r.Context(), requester(r), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	created(w, r, "performance.feedback_created", "Feedback submitted successfully", f, map[string]any{
		"user_id": f.UserID,
		"type":    f.FeedbackType,
	})
}

func (a *API) listFeedback(w http.ResponseWriter, r *http.Request) {
	fb, err := a.records.Feedback(r.Context(), requester(r), chi.URLParam(r, "user_id"))
	respond(w, r, fb, err)
}

// --- attendance ---

func (a *API) checkIn(w http.ResponseWriter, r *http.Request) {
	att, err := a.records.CheckIn(r.Context(), requester(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "attendance.checked_in", map[string]any{"date": att.Date})
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Checked in successfully",
		"time":    att.CheckIn,
		"data":    att,
	})
}

func (a *API) checkOut(w http.ResponseWriter, r *http.Request) {
	att, err := a.records.CheckOut(r.Context(), requester(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "attendance.checked_out", map[string]any{
		"date":  att.Date,
		"hours": att.HoursWorked,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Checked out successfully",
		"hours_worked": att.HoursWorked,
		"data":         att,
	})
}

func (a *API) attendanceOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := a.records.Overview(r.Context(), requester(r), chi.URLParam(r, "user_id"))
	respond(w, r, ov, err)
}

func (a *API) applyLeave(w http.ResponseWriter, r *http.Request) {
	var in records.LeaveInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	l, err := a.records.ApplyLeave(r.Context(), requester(r), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	created(w, r, "attendance.leave_applied", "Leave application submitted successfully", l, map[string]any{"leave_id": l.ID})
}

func (a *API) listLeaves(w http.ResponseWriter, r *http.Request) {
	leaves, err := a.records.Leaves(r.Context(), requester(r), chi.URLParam(r, "user_id"))
	respond(w, r, leaves, err)
}

func (a *API) decideLeave(w http.ResponseWriter, r *http.Request) {
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	l, err := a.records.DecideLeave(r.Context(), requester(r), chi.URLParam(r, "leave_id"), status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "attendance.leave_decided", map[string]any{
		"leave_id": l.ID,
		"status":   l.Status,
	})
	writeJSON(w, http.StatusOK, message{Message: "Leave " + strings.ToLower(l.Status) + " successfully", Data: l})
}
