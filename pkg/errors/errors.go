package errors

import (
	"errors"
	"fmt"
)

var (
	ErrPermissionDenied  = errors.New("无权执行该操作 / Permission denied")
	ErrUnauthenticated   = errors.New("请先登录 / Login required")
	ErrBadCredentials    = errors.New("账号或密码错误 / Invalid username or password")
	ErrFileRequired      = errors.New("file is required")
	ErrFileTooLarge      = errors.New("file exceeds size limit")
	ErrInvalidFileFormat = errors.New("invalid file format")
	ErrImageTooLarge     = errors.New("图片仍大于限制，请更换更小文件 / image still too large, supply a smaller source image")
	ErrDuplicateLink     = errors.New("该链接已存在，请勿重复上传。")
	ErrNotFound          = errors.New("record not found")
	ErrInvalidSlot       = errors.New("slot_key 非法，请使用 home_hero 或 activities_gallery。")
	ErrMissingIdentity   = errors.New("缺少邮箱或提交时间 / Missing email or submission timestamp.")
	ErrMissingTitleOrURL = errors.New("缺少标题或链接 / Missing title or URL.")
	ErrInvalidBatchState = errors.New("batch is not in the expected state")
	ErrPhotoNotFound     = errors.New("照片未在压缩包中找到 / photo not found in archive")
	ErrPhotoSkipped      = errors.New("照片未保存 / photo skipped")
	ErrRowPanic          = errors.New("行处理异常 / row processing crashed")
)

// Is, As, New and Join mirror the standard library so callers can import a single package.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

func New(text string) error { return errors.New(text) }

func Join(errs ...error) error { return errors.Join(errs...) }

type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s",
		e.Field, e.Value, e.Message)
}

// RowError ties a per-row import failure to its 1-based spreadsheet row number.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("第 %d 行 / row %d: %s", e.Row, e.Row, e.Err.Error())
}

func (e RowError) Unwrap() error {
	return e.Err
}

type RetryableError struct {
	Err     error
	Message string
}

func (e RetryableError) Error() string {
	return fmt.Sprintf("retryable error: %s - %s", e.Message, e.Err.Error())
}

func (e RetryableError) Unwrap() error {
	return e.Err
}

func NewRetryableError(err error, message string) error {
	return RetryableError{
		Err:     err,
		Message: message,
	}
}
