package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hrms.org/internal/records"
)

var (
	oldestFirst = bson.D{{Key: "created_at", Value: 1}, {Key: "id", Value: 1}}
	byDate      = bson.D{{Key: "date", Value: 1}, {Key: "check_in", Value: 1}}
)

func byUser(userID string) bson.D { return bson.D{{Key: "user_id", Value: userID}} }

func byID(id string) bson.D { return bson.D{{Key: "id", Value: id}} }

func (s *Store) insert(ctx context.Context, coll string, doc any) error {
	_, err := s.coll(coll).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return records.ErrConflict
	}
	return err
}

// patch applies upd as a $set on the matched document and returns it afterwards.
// upd must marshal to only the fields being changed.
func patch[T any](ctx context.Context, c *mongo.Collection, filter bson.D, upd any) (T, error) {
	var v T
	set, err := bson.Marshal(upd)
	if err != nil {
		return v, err
	}
	if elems, err := bson.Raw(set).Elements(); err != nil || len(elems) == 0 {
		return findOne[T](ctx, c, filter, records.ErrNotFound)
	}
	err = c.FindOneAndUpdate(ctx, filter,
		bson.D{{Key: "$set", Value: bson.Raw(set)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return v, records.ErrNotFound
	}
	return v, err
}

// --- onboarding & payroll ---

func (s *Store) CreateOnboarding(ctx context.Context, o records.Onboarding) error {
	return s.insert(ctx, collOnboarding, o)
}

func (s *Store) OnboardingByUser(ctx context.Context, userID string) (records.Onboarding, error) {
	return findOne[records.Onboarding](ctx, s.coll(collOnboarding), byUser(userID), records.ErrNotFound)
}

func (s *Store) UpdateOnboarding(ctx context.Context, userID string, upd records.OnboardingUpdate) (records.Onboarding, error) {
	return patch[records.Onboarding](ctx, s.coll(collOnboarding), byUser(userID), upd)
}

func (s *Store) CreatePayroll(ctx context.Context, p records.Payroll) error {
	if p.PaymentHistory == nil {
		p.PaymentHistory = []records.Payment{}
	}
	return s.insert(ctx, collPayroll, p)
}

func (s *Store) PayrollByUser(ctx context.Context, userID string) (records.Payroll, error) {
	return findOne[records.Payroll](ctx, s.coll(collPayroll), byUser(userID), records.ErrNotFound)
}

func (s *Store) AppendPayment(ctx context.Context, userID string, p records.Payment) error {
	res, err := s.coll(collPayroll).UpdateOne(ctx, byUser(userID),
		bson.D{{Key: "$push", Value: bson.D{{Key: "payment_history", Value: p}}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return records.ErrNotFound
	}
	return nil
}

// --- performance ---

func (s *Store) CreateGoal(ctx context.Context, g records.Goal) error {
	return s.insert(ctx, collGoals, g)
}

func (s *Store) GoalsByUser(ctx context.Context, userID string, limit int) ([]records.Goal, error) {
	return findMany[records.Goal](ctx, s.coll(collGoals), byUser(userID), oldestFirst, limit)
}

func (s *Store) CreateTask(ctx context.Context, t records.Task) error {
	return s.insert(ctx, collTasks, t)
}

func (s *Store) TaskByID(ctx context.Context, id string) (records.Task, error) {
	return findOne[records.Task](ctx, s.coll(collTasks), byID(id), records.ErrNotFound)
}

func (s *Store) TasksByUser(ctx context.Context, userID string, limit int) ([]records.Task, error) {
	return findMany[records.Task](ctx, s.coll(collTasks), byUser(userID), oldestFirst, limit)
}

func (s *Store) UpdateTask(ctx context.Context, id string, upd records.TaskUpdate) (records.Task, error) {
	return patch[records.Task](ctx, s.coll(collTasks), byID(id), upd)
}

func (s *Store) CreateFeedback(ctx context.Context, f records.Feedback) error {
	return s.insert(ctx, collFeedback, f)
}

func (s *Store) FeedbackByUser(ctx context.Context, userID string, limit int) ([]records.Feedback, error) {
	return findMany[records.Feedback](ctx, s.coll(collFeedback), byUser(userID), oldestFirst, limit)
}

// --- attendance & leave ---

func (s *Store) CreateAttendance(ctx context.Context, a records.Attendance) error {
	return s.insert(ctx, collAttendance, a)
}

func (s *Store) AttendanceOn(ctx context.Context, userID, date string) (records.Attendance, error) {
	return findOne[records.Attendance](ctx, s.coll(collAttendance),
		bson.D{{Key: "user_id", Value: userID}, {Key: "date", Value: date}}, records.ErrNotFound)
}

func (s *Store) CompleteAttendance(ctx context.Context, id string, checkOut time.Time, hours float64) error {
	c := s.coll(collAttendance)
	res, err := c.UpdateOne(ctx,
		bson.D{{Key: "id", Value: id}, {Key: "check_out", Value: bson.D{{Key: "$exists", Value: false}}}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "check_out", Value: checkOut}, {Key: "hours_worked", Value: hours}}}})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := c.CountDocuments(ctx, byID(id))
	if err != nil {
		return err
	}
	if n > 0 {
		return records.ErrConflict
	}
	return records.ErrNotFound
}

func (s *Store) AttendanceByUser(ctx context.Context, userID string, limit int) ([]records.Attendance, error) {
	return findMany[records.Attendance](ctx, s.coll(collAttendance), byUser(userID), byDate, limit)
}

func (s *Store) CreateLeave(ctx context.Context, l records.Leave) error {
	return s.insert(ctx, collLeaves, l)
}

func (s *Store) LeaveByID(ctx context.Context, id string) (records.Leave, error) {
	return findOne[records.Leave](ctx, s.coll(collLeaves), byID(id), records.ErrNotFound)
}

func (s *Store) LeavesByUser(ctx context.Context, userID string, limit int) ([]records.Leave, error) {
	return findMany[records.Leave](ctx, s.coll(collLeaves), byUser(userID),
		bson.D{{Key: "applied_at", Value: 1}, {Key: "id", Value: 1}}, limit)
}

func (s *Store) DecideLeave(ctx context.Context, id, status, decidedBy string) (records.Leave, error) {
	return patch[records.Leave](ctx, s.coll(collLeaves), byID(id), bson.D{
		{Key: "status", Value: status},
		{Key: "approved_by", Value: decidedBy},
	})
}
