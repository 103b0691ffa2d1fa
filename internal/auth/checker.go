package auth

import "context"

var _ Checker = (*LoginChecker)(nil)
var _ Checker = (*TestChecker)(nil)

type Checker interface {
	GetSession(ctx context.Context, token string) (*Session, error)
}
