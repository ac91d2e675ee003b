package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Thanujadevi/EMPOWERHER/internal/model"
)

// Storage is a testify mock of model.Storage. Upload drains the reader so
// expectations can match on the uploaded bytes.
type Storage struct {
	mock.Mock
}

func (m *Storage) Upload(ctx context.Context, key string, reader io.Reader) error {
	data, _ := io.ReadAll(reader)
	args := m.Called(ctx, key, data)
	return args.Error(0)
}

func (m *Storage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

func (m *Storage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *Storage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// Dispatcher is a testify mock of model.Dispatcher.
type Dispatcher struct {
	mock.Mock
}

func (m *Dispatcher) PublishLocation(ctx context.Context, eventID uuid.UUID, sample model.LocationSample) error {
	args := m.Called(ctx, eventID, sample)
	return args.Error(0)
}

func (m *Dispatcher) PublishStatus(ctx context.Context, eventID, ownerID uuid.UUID, status model.EmergencyStatus) error {
	args := m.Called(ctx, eventID, ownerID, status)
	return args.Error(0)
}

// ReportStore is a testify mock of model.ReportStore.
type ReportStore struct {
	mock.Mock
}

func (m *ReportStore) List(ctx context.Context, limit int) ([]model.CrimeReport, error) {
	args := m.Called(ctx, limit)
	reports, _ := args.Get(0).([]model.CrimeReport)
	return reports, args.Error(1)
}

func (m *ReportStore) Create(ctx context.Context, report model.CrimeReport) (model.CrimeReport, error) {
	args := m.Called(ctx, report)
	return args.Get(0).(model.CrimeReport), args.Error(1)
}
