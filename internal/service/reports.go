package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Thanujadevi/EMPOWERHER/internal/logger"
	"github.com/Thanujadevi/EMPOWERHER/internal/model"
)

const earthRadiusKm = 6371.0

// Reports serves the community crime feed.
type Reports struct {
	store   model.ReportStore
	session *SessionStore
	logger  *logger.Logger
	now     func() time.Time
}

func NewReports(store model.ReportStore, session *SessionStore, logger *logger.Logger) *Reports {
	return &Reports{store: store, session: session, logger: logger, now: time.Now}
}

// Nearby lists reports, closest first when from is known. Reports without
// coordinates sort after located ones. A non-positive limit returns all.
func (r *Reports) Nearby(ctx context.Context, from *model.Coordinates, limit int) ([]model.ReportView, error) {
	reports, err := r.store.List(ctx, 0)
	if err != nil {
		r.logger.Error("Reports: failed to list reports", "error", err.Error())
		return nil, model.NewUserError(model.ErrOperationFailed, "Failed to load reports. Please try again.", err)
	}

	views := make([]model.ReportView, len(reports))
	for i, report := range reports {
		views[i] = model.ReportView{CrimeReport: report}
		if from != nil && located(report) {
			d := DistanceKm(*from, model.Coordinates{Latitude: report.Latitude, Longitude: report.Longitude})
			views[i].DistanceKm = &d
		}
	}

	if from != nil {
		sort.SliceStable(views, func(i, j int) bool {
			a, b := views[i].DistanceKm, views[j].DistanceKm
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			default:
				return *a < *b
			}
		})
	}

	if limit > 0 && len(views) > limit {
		views = views[:limit]
	}
	return views, nil
}

// File records a report on behalf of the signed-in authority.
func (r *Reports) File(ctx context.Context, report model.CrimeReport) (model.CrimeReport, error) {
	user, ok := r.session.CurrentUser()
	if !ok {
		return model.CrimeReport{}, model.NewUserError(model.ErrOperationFailed, "Please log in to file a report.", model.ErrNoActiveSession)
	}
	if !r.session.State().IsAuthority {
		return model.CrimeReport{}, model.NewUserError(model.ErrPermissionDenied, "Only authorities can file reports.", model.ErrNotAuthority)
	}

	report.Type = strings.ToLower(strings.TrimSpace(report.Type))
	if report.Type == "" || strings.TrimSpace(report.Description) == "" {
		return model.CrimeReport{}, model.NewUserError(model.ErrValidation, "Please enter the incident type and description.", nil)
	}
	report.ReportedBy = user.ID
	if report.OccurredAt.IsZero() {
		report.OccurredAt = r.now()
	}

	created, err := r.store.Create(ctx, report)
	if err != nil {
		r.logger.Error("Reports: failed to create report", "user_id", user.ID, "error", err.Error())
		return model.CrimeReport{}, model.NewUserError(model.ErrOperationFailed, "Failed to file report. Please try again.", err)
	}

	r.logger.Info("Reports: report filed", "report_id", created.ID, "type", created.Type)
	return created, nil
}

func located(report model.CrimeReport) bool {
	return report.Latitude != 0 || report.Longitude != 0
}

// DistanceKm is the great-circle distance between a and b.
func DistanceKm(a, b model.Coordinates) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}
