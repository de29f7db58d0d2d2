package domain

import "context"

// PageSource retrieves one page of records from the remote dataset.
// Implementations must honour ctx cancellation.
type PageSource interface {
	// GetPage returns page pageIndex (1-based) holding at most limit records
	GetPage(ctx context.Context, pageIndex, limit int) (*Page, error)
}
