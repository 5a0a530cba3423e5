package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrPermissionDenied 数据库侧权限拒绝（行级安全策略或受限账号）
var ErrPermissionDenied = errors.New("permission denied")

// translateError 将驱动层错误翻译为类型化错误，调用方用 errors.Is 判断。
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "42501" {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, pgErr.Message)
	}
	return err
}
