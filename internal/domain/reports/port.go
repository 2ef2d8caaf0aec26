package reports

import "context"

// Repository port (interface for persistence)
type Repository interface {
	Save(ctx context.Context, r *Report) error
	Get(ctx context.Context, id ReportID) (*Report, error)
	Paginate(ctx context.Context, page, pageSize int) ([]*Report, error)
}
