package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/eventfeed/internal/dbx"
	"github.com/dmitrijs2005/eventfeed/internal/server/repositories/events"
	"github.com/dmitrijs2005/eventfeed/internal/server/repositories/hobbies"
	"github.com/dmitrijs2005/eventfeed/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a DB or a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Events(db dbx.DBTX) events.Repository
	Hobbies(db dbx.DBTX) hobbies.Repository
}
