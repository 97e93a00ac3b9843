package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"airwatch/internal/types"
)

// --- Mock DBTX ---

type mockDBTX struct {
	mock.Mock
}

func (m *mockDBTX) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDBTX) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if r := args.Get(0); r != nil {
		return r.(pgx.Rows), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDBTX) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

// --- Mock Row ---

type mockRow struct {
	scanErr error
	scanFn  func(dest ...any) error
}

func (r *mockRow) Scan(dest ...any) error {
	if r.scanFn != nil {
		return r.scanFn(dest...)
	}
	return r.scanErr
}

// --- Mock Rows ---

type mockRows struct {
	data    [][]any
	idx     int
	closed  bool
	scanErr error
	errVal  error
}

func newMockRows(data [][]any) *mockRows {
	return &mockRows{data: data, idx: -1}
}

func (r *mockRows) Next() bool {
	if r.closed {
		return false
	}
	r.idx++
	return r.idx < len(r.data)
}

func (r *mockRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	row := r.data[r.idx]
	for i, d := range dest {
		switch v := d.(type) {
		case *int64:
			*v = row[i].(int64)
		case *string:
			*v = row[i].(string)
		case *int:
			*v = row[i].(int)
		case *float64:
			*v = row[i].(float64)
		case *time.Time:
			*v = row[i].(time.Time)
		case **time.Time:
			if row[i] == nil {
				*v = nil
			} else {
				ts := row[i].(time.Time)
				*v = &ts
			}
		}
	}
	return nil
}

func (r *mockRows) Close()                                       { r.closed = true }
func (r *mockRows) Err() error                                   { return r.errVal }
func (r *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *mockRows) RawValues() [][]byte                          { return nil }
func (r *mockRows) Values() ([]any, error)                       { return nil, nil }
func (r *mockRows) Conn() *pgx.Conn                              { return nil }

// --- AlertRepo Tests ---

func TestAlertRepo_Insert_Success(t *testing.T) {
	mockDB := new(mockDBTX)
	repo := NewAlertRepo(mockDB, nil)

	created := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	mockDB.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{
			scanFn: func(dest ...any) error {
				*dest[0].(*int64) = 7
				*dest[1].(*time.Time) = created
				return nil
			},
		})

	alert := &types.AlertSubscription{
		UserID:      1,
		Location:    "São Paulo",
		Lat:         -23.55,
		Lon:         -46.63,
		Threshold:   100,
		DeviceToken: "token",
	}
	err := repo.Insert(context.Background(), alert)
	require.NoError(t, err)

	assert.Equal(t, int64(7), alert.ID)
	assert.Equal(t, created, alert.CreatedAt)
	mockDB.AssertExpectations(t)
}

func TestAlertRepo_Insert_DBError(t *testing.T) {
	mockDB := new(mockDBTX)
	repo := NewAlertRepo(mockDB, nil)

	mockDB.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanErr: errors.New("connection refused")})

	err := repo.Insert(context.Background(), &types.AlertSubscription{})
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestAlertRepo_List_Success(t *testing.T) {
	mockDB := new(mockDBTX)
	repo := NewAlertRepo(mockDB, nil)

	created := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	notified := time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)
	rows := newMockRows([][]any{
		{int64(1), int64(10), "SP", -23.55, -46.63, 100.0, "tok-a", created, nil},
		{int64(2), int64(11), "RJ", -22.90, -43.20, 150.0, "tok-b", created, notified},
	})

	mockDB.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(rows, nil)

	alerts, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	assert.Equal(t, int64(1), alerts[0].ID)
	assert.Nil(t, alerts[0].LastNotifiedAt)
	require.NotNil(t, alerts[1].LastNotifiedAt)
	assert.Equal(t, notified, *alerts[1].LastNotifiedAt)
}

func TestAlertRepo_List_QueryError(t *testing.T) {
	mockDB := new(mockDBTX)
	repo := NewAlertRepo(mockDB, nil)

	mockDB.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(nil, errors.New("connection refused"))

	_, err := repo.List(context.Background())
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestAlertRepo_UpdateLastNotified_Success(t *testing.T) {
	mockDB := new(mockDBTX)
	repo := NewAlertRepo(mockDB, nil)

	mockDB.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("UPDATE 1"), nil)

	err := repo.UpdateLastNotified(context.Background(), 7, time.Now().UTC())
	require.NoError(t, err)
	mockDB.AssertExpectations(t)
}

func TestAlertRepo_UpdateLastNotified_MissingRowIsNotAnError(t *testing.T) {
	mockDB := new(mockDBTX)
	repo := NewAlertRepo(mockDB, nil)

	mockDB.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("UPDATE 0"), nil)

	err := repo.UpdateLastNotified(context.Background(), 404, time.Now().UTC())
	require.NoError(t, err, "an alert deleted mid-sweep is not a failure")
}

func TestAlertRepo_Delete_Found(t *testing.T) {
	mockDB := new(mockDBTX)
	repo := NewAlertRepo(mockDB, nil)

	mockDB.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("DELETE 1"), nil)

	found, err := repo.Delete(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestAlertRepo_Delete_NotFound(t *testing.T) {
	mockDB := new(mockDBTX)
	repo := NewAlertRepo(mockDB, nil)

	mockDB.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("DELETE 0"), nil)

	found, err := repo.Delete(context.Background(), 404)
	require.NoError(t, err)
	assert.False(t, found)
}
