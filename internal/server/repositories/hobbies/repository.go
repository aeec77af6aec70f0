package hobbies

import "context"

type Repository interface {
	List(ctx context.Context) ([]string, error)
	Link(ctx context.Context, eventID int64, names []string) error
}
