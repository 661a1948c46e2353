package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/amit-3245/campus-complaint-portal/internal/auth"
	"github.com/amit-3245/campus-complaint-portal/internal/models"
	"github.com/amit-3245/campus-complaint-portal/internal/repository"
	dbtest "github.com/amit-3245/campus-complaint-portal/internal/testutil"
)

// fakeUploads records stored and removed names in memory.
type fakeUploads struct {
	stored   map[string]string
	removed  []string
	storeErr error
}

func newFakeUploads() *fakeUploads {
	return &fakeUploads{stored: map[string]string{}}
}

func (f *fakeUploads) Store(name string, body io.ReadSeeker, contentType string) (string, error) {
	if f.storeErr != nil {
		return "", f.storeErr
	}
	data, _ := io.ReadAll(body)
	key := "1700000000000-" + name
	f.stored[key] = string(data)
	return key, nil
}

func (f *fakeUploads) Remove(name string) error {
	f.removed = append(f.removed, name)
	delete(f.stored, name)
	return nil
}

// failingComplaints breaks Create and delegates everything else.
type failingComplaints struct {
	repository.ComplaintRepository
}

func (failingComplaints) Create(ctx context.Context, c *models.Complaint) error {
	return errors.New("connection reset")
}

type fixture struct {
	db         *gorm.DB
	auth       *AuthService
	complaints *ComplaintService
	uploads    *fakeUploads
	tokens     *auth.TokenService
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.NewDB(t)
	tokens := auth.NewTokenService("test-secret", "test", 0)
	uploads := newFakeUploads()
	return &fixture{
		db:         db,
		auth:       NewAuthService(repository.NewUserRepository(db), tokens),
		complaints: NewComplaintService(repository.NewComplaintRepository(db), uploads),
		uploads:    uploads,
		tokens:     tokens,
	}
}

func (f *fixture) admin(t *testing.T) *models.User {
	t.Helper()
	return dbtest.CreateUser(t, f.db, "admin", "admin@campus.edu", models.RoleAdmin)
}

func studentComplaint(title string) CreateInput {
	return CreateInput{
		ComplaintType: models.TypeStudent,
		StudentID:     "S1",
		Title:         title,
		Category:      "Hostel",
		Problem:       "Water drips through the ceiling",
	}
}

// ==========================================================================
// Register / Login / Profile
// ==========================================================================

func TestRegister(t *testing.T) {
	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{"student", RegisterInput{Name: "A", Email: "a@campus.edu", Password: "pw", Role: "student", StudentID: "S1"}, nil},
		{"teacher", RegisterInput{Name: "T", Email: "t@campus.edu", Password: "pw", Role: "teacher"}, nil},
		{"student without id", RegisterInput{Name: "A", Email: "a@campus.edu", Password: "pw", Role: "student"}, ErrValidation},
		{"default role is student", RegisterInput{Name: "A", Email: "a@campus.edu", Password: "pw"}, ErrValidation},
		{"admin self-assign", RegisterInput{Name: "X", Email: "x@campus.edu", Password: "pw", Role: "admin"}, ErrValidation},
		{"unknown role", RegisterInput{Name: "X", Email: "x@campus.edu", Password: "pw", Role: "dean"}, ErrValidation},
		{"missing password", RegisterInput{Name: "X", Email: "x@campus.edu", Role: "teacher"}, ErrValidation},
		{"missing email", RegisterInput{Name: "X", Password: "pw", Role: "teacher"}, ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			res, err := f.auth.Register(context.Background(), tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, res.Token)
			assert.NotEmpty(t, res.User.ID)
			assert.NotEqual(t, "pw", res.User.PasswordHash)

			claims, err := f.tokens.Verify(res.Token)
			require.NoError(t, err)
			assert.Equal(t, res.User.ID, claims.UserID)
			assert.Equal(t, tt.input.Role, claims.Role)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, RegisterInput{Name: "T", Email: "t@campus.edu", Password: "pw", Role: "teacher"})
	require.NoError(t, err)

	_, err = f.auth.Register(ctx, RegisterInput{Name: "T2", Email: "  T@Campus.edu ", Password: "pw2", Role: "teacher"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestLoginDoesNotLeakWhichPartFailed(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, RegisterInput{Name: "T", Email: "t@campus.edu", Password: "right", Role: "teacher"})
	require.NoError(t, err)

	_, wrongPassword := f.auth.Login(ctx, "t@campus.edu", "wrong")
	_, unknownEmail := f.auth.Login(ctx, "nobody@campus.edu", "right")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())

	res, err := f.auth.Login(ctx, "T@CAMPUS.EDU", "right")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestAuthenticate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res, err := f.auth.Register(ctx, RegisterInput{Name: "T", Email: "t@campus.edu", Password: "pw", Role: "teacher"})
	require.NoError(t, err)

	user, err := f.auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, user.ID)

	_, err = f.auth.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.auth.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := auth.NewTokenService("test-secret", "test", 0).
		WithClock(func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) })
	old, err := expired.Issue(res.User.ID, res.User.Role)
	require.NoError(t, err)
	_, err = f.auth.Authenticate(ctx, old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	ghost, err := f.tokens.Issue("no-such-user", models.RoleTeacher)
	require.NoError(t, err)
	_, err = f.auth.Authenticate(ctx, ghost)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestProfile(t *testing.T) {
	f := setup(t)
	u := &models.User{ID: "u1", Name: "T"}

	got, err := f.auth.Profile(u)
	require.NoError(t, err)
	assert.Same(t, u, got)

	_, err = f.auth.Profile(nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

// ==========================================================================
// Complaints
// ==========================================================================

func TestCreateValidation(t *testing.T) {
	f := setup(t)
	owner := dbtest.CreateUser(t, f.db, "asha", "asha@campus.edu", models.RoleStudent)

	tests := []struct {
		name   string
		mutate func(in *CreateInput)
	}{
		{"student type without id", func(in *CreateInput) { in.StudentID = "" }},
		{"missing title", func(in *CreateInput) { in.Title = "  " }},
		{"missing category", func(in *CreateInput) { in.Category = "" }},
		{"category outside closed set", func(in *CreateInput) { in.Category = "Parking" }},
		{"unknown type", func(in *CreateInput) { in.ComplaintType = "parent" }},
		{"missing problem", func(in *CreateInput) { in.Problem = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := studentComplaint("Leaky roof")
			in.Image = &Attachment{Filename: "roof.png", Body: strings.NewReader("img")}
			tt.mutate(&in)

			_, err := f.complaints.Create(context.Background(), owner, in)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Empty(t, f.uploads.stored, "nothing is stored for an invalid complaint")
		})
	}
}

func TestCreateWithImage(t *testing.T) {
	f := setup(t)
	owner := dbtest.CreateUser(t, f.db, "asha", "asha@campus.edu", models.RoleStudent)

	in := studentComplaint("Leaky roof")
	in.Image = &Attachment{Filename: "roof.png", ContentType: "image/png", Body: strings.NewReader("img")}

	before := testutil.ToFloat64(complaintsCreated.WithLabelValues("Hostel"))
	c, err := f.complaints.Create(context.Background(), owner, in)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, c.Status)
	assert.Equal(t, "1700000000000-roof.png", c.Image)
	assert.Equal(t, "img", f.uploads.stored[c.Image])
	require.NotNil(t, c.User)
	assert.Equal(t, owner.Email, c.User.Email)
	assert.Equal(t, before+1, testutil.ToFloat64(complaintsCreated.WithLabelValues("Hostel")))
}

func TestCreateRemovesImageWhenInsertFails(t *testing.T) {
	f := setup(t)
	owner := dbtest.CreateUser(t, f.db, "asha", "asha@campus.edu", models.RoleStudent)
	svc := NewComplaintService(failingComplaints{repository.NewComplaintRepository(f.db)}, f.uploads)

	in := studentComplaint("Leaky roof")
	in.Image = &Attachment{Filename: "roof.png", Body: strings.NewReader("img")}

	_, err := svc.Create(context.Background(), owner, in)
	assert.ErrorIs(t, err, ErrStorage)
	assert.Equal(t, []string{"1700000000000-roof.png"}, f.uploads.removed)
	assert.Empty(t, f.uploads.stored, "no orphaned file may remain")
}

func TestCreateFailsWhenImageStoreFails(t *testing.T) {
	f := setup(t)
	owner := dbtest.CreateUser(t, f.db, "asha", "asha@campus.edu", models.RoleStudent)
	f.uploads.storeErr = errors.New("disk full")

	in := studentComplaint("Leaky roof")
	in.Image = &Attachment{Filename: "roof.png", Body: strings.NewReader("img")}

	_, err := f.complaints.Create(context.Background(), owner, in)
	assert.ErrorIs(t, err, ErrStorage)

	var count int64
	f.db.Model(&models.Complaint{}).Count(&count)
	assert.Zero(t, count, "no complaint may reference a file that was never stored")
}

func TestListAllRequiresAdmin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, f.db, "alice", "alice@campus.edu", models.RoleTeacher)
	bob := dbtest.CreateUser(t, f.db, "bob", "bob@campus.edu", models.RoleTeacher)
	dbtest.CreateComplaint(t, f.db, alice, "A", "IT")
	dbtest.CreateComplaint(t, f.db, bob, "B", "IT")

	_, err := f.complaints.ListAll(ctx, alice)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.complaints.ListAll(ctx, nil)
	assert.ErrorIs(t, err, ErrUnauthorized)

	all, err := f.complaints.ListAll(ctx, f.admin(t))
	require.NoError(t, err)
	assert.Len(t, all, 2)
	for _, c := range all {
		require.NotNil(t, c.User)
		assert.NotEmpty(t, c.User.Name)
	}
}

func TestListMineOnlyOwnComplaints(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, f.db, "alice", "alice@campus.edu", models.RoleTeacher)
	bob := dbtest.CreateUser(t, f.db, "bob", "bob@campus.edu", models.RoleTeacher)
	dbtest.CreateComplaint(t, f.db, alice, "A1", "IT")
	dbtest.CreateComplaint(t, f.db, bob, "B1", "IT")
	dbtest.CreateComplaint(t, f.db, alice, "A2", "Library")

	mine, err := f.complaints.ListMine(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, c := range mine {
		assert.Equal(t, alice.ID, c.UserID)
	}
}

func TestUpdateStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := dbtest.CreateUser(t, f.db, "carol", "carol@campus.edu", models.RoleTeacher)
	c := dbtest.CreateComplaint(t, f.db, owner, "Fan", "Hostel")
	admin := f.admin(t)

	_, err := f.complaints.UpdateStatus(ctx, owner, c.ID, models.StatusResolved)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.complaints.UpdateStatus(ctx, admin, "missing", models.StatusResolved)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.complaints.UpdateStatus(ctx, admin, c.ID, "Closed")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.complaints.UpdateStatus(ctx, admin, c.ID, "")
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := f.complaints.UpdateStatus(ctx, admin, c.ID, models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, updated.Status)
	assert.Equal(t, "Fan", updated.Title)
}

func TestUpdateStatusIsIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := dbtest.CreateUser(t, f.db, "carol", "carol@campus.edu", models.RoleTeacher)
	c := dbtest.CreateComplaint(t, f.db, owner, "Fan", "Hostel")
	admin := f.admin(t)

	snapshot := func() models.Complaint {
		var got models.Complaint
		require.NoError(t, f.db.First(&got, "id = ?", c.ID).Error)
		return got
	}

	_, err := f.complaints.UpdateStatus(ctx, admin, c.ID, models.StatusRejected)
	require.NoError(t, err)
	first := snapshot()

	_, err = f.complaints.UpdateStatus(ctx, admin, c.ID, models.StatusRejected)
	require.NoError(t, err)
	second := snapshot()

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, first.Problem, second.Problem)
	assert.Equal(t, first.UserID, second.UserID)
}

func TestDeleteOwnerOnly(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := dbtest.CreateUser(t, f.db, "dan", "dan@campus.edu", models.RoleTeacher)
	other := dbtest.CreateUser(t, f.db, "eve", "eve@campus.edu", models.RoleTeacher)
	c := dbtest.CreateComplaint(t, f.db, owner, "Noise", "Hostel")

	assert.ErrorIs(t, f.complaints.Delete(ctx, other, c.ID), ErrForbidden)
	assert.ErrorIs(t, f.complaints.Delete(ctx, f.admin(t), c.ID), ErrForbidden, "admins have no override")
	assert.ErrorIs(t, f.complaints.Delete(ctx, owner, "missing"), ErrNotFound)

	before := testutil.ToFloat64(complaintsDeleted)
	require.NoError(t, f.complaints.Delete(ctx, owner, c.ID))
	assert.Equal(t, before+1, testutil.ToFloat64(complaintsDeleted))

	assert.ErrorIs(t, f.complaints.Delete(ctx, owner, c.ID), ErrNotFound)
}

func TestSummary(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := dbtest.CreateUser(t, f.db, "fay", "fay@campus.edu", models.RoleTeacher)
	admin := f.admin(t)
	a := dbtest.CreateComplaint(t, f.db, owner, "A", "IT")
	dbtest.CreateComplaint(t, f.db, owner, "B", "IT")

	_, err := f.complaints.UpdateStatus(ctx, admin, a.ID, models.StatusResolved)
	require.NoError(t, err)

	_, err = f.complaints.Summary(ctx, owner)
	assert.ErrorIs(t, err, ErrForbidden)

	sum, err := f.complaints.Summary(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.Total)
	assert.Equal(t, int64(1), sum.ByStatus[models.StatusPending])
	assert.Equal(t, int64(1), sum.ByStatus[models.StatusResolved])
	assert.Equal(t, int64(0), sum.ByStatus[models.StatusRejected])
}

// ==========================================================================
// Scenarios
// ==========================================================================

func TestScenarioStudentComplaintResolvedByAdmin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	admin := f.admin(t)

	_, err := f.auth.Register(ctx, RegisterInput{Name: "A", Email: "a@campus.edu", Password: "pw", Role: "student", StudentID: "S1"})
	require.NoError(t, err)

	login, err := f.auth.Login(ctx, "a@campus.edu", "pw")
	require.NoError(t, err)
	a, err := f.auth.Authenticate(ctx, login.Token)
	require.NoError(t, err)

	created, err := f.complaints.Create(ctx, a, CreateInput{
		ComplaintType: models.TypeStudent,
		StudentID:     "S1",
		Title:         "Leaky roof",
		Category:      "Hostel",
		Problem:       "...",
	})
	require.NoError(t, err)

	mine, err := f.complaints.ListMine(ctx, a)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, models.StatusPending, mine[0].Status)

	_, err = f.complaints.UpdateStatus(ctx, admin, created.ID, models.StatusResolved)
	require.NoError(t, err)

	mine, err = f.complaints.ListMine(ctx, a)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, models.StatusResolved, mine[0].Status)
}

func TestScenarioDeleteSomeoneElsesComplaint(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ra, err := f.auth.Register(ctx, RegisterInput{Name: "A", Email: "a@campus.edu", Password: "pw", Role: "teacher"})
	require.NoError(t, err)
	rb, err := f.auth.Register(ctx, RegisterInput{Name: "B", Email: "b@campus.edu", Password: "pw", Role: "teacher"})
	require.NoError(t, err)

	c, err := f.complaints.Create(ctx, rb.User, CreateInput{
		ComplaintType: models.TypeTeacher,
		Title:         "Projector",
		Category:      "IT",
		Problem:       "No HDMI",
	})
	require.NoError(t, err)

	assert.ErrorIs(t, f.complaints.Delete(ctx, ra.User, c.ID), ErrForbidden)
	require.NoError(t, f.complaints.Delete(ctx, rb.User, c.ID))

	mine, err := f.complaints.ListMine(ctx, rb.User)
	require.NoError(t, err)
	assert.Empty(t, mine)
}
