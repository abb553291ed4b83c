package services

import "errors"

// Common service errors
var (
	ErrNotFound           = errors.New("レコードが見つかりません")
	ErrValidation         = errors.New("入力内容が正しくありません")
	ErrInvalidCredentials = errors.New("ユーザー名またはパスワードが正しくありません")
	ErrInactiveAccount    = errors.New("このアカウントは無効化されています")
	ErrUnauthorized       = errors.New("権限がありません")
	ErrInvalidState       = errors.New("現在の状態ではこの操作を実行できません")
	ErrReferenced         = errors.New("他のデータから参照されているため削除できません")
	ErrSystemEntry        = errors.New("自動仕訳は手動で変更・削除できません")
	ErrInsufficientStock  = errors.New("在庫数量が不足しています")
)
