package table

import "github.com/cemkoker/adisyon/internal/models"

type PersistTableInput struct {
	Table *models.Table
}

type FetchTableInput struct {
	TableID string
}

type DeleteTableInput struct {
	TableID string
}

type ListTablesInput struct {
}

type ListTablesOutput struct {
	Tables []*models.Table
}

type SubscribeInput struct {
	TableID string

	// OnChange receives the written table document. It is invoked from the
	// store's delivery goroutine (redis) or inline from the writer (local).
	OnChange func(table *models.Table)
}
