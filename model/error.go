// Package model は、アプリケーションのデータモデル定義を提供します。
package model

import (
	"errors"
	"fmt"
)

// センチネルエラー - レコードが1件もない場合
//
// 空のチャートは有効な状態なので、呼び出し側はこのエラーを致命的に扱わない。
var ErrEmptyData = errors.New("no running records")

// FetchError はデータリソースの取得またはJSONとしての解析に失敗したことを表す型
type FetchError struct {
	Location string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Location, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError はFetchErrorを生成するヘルパー関数
func NewFetchError(location string, err error) error {
	return &FetchError{Location: location, Err: err}
}

// DataError は解析はできたが期待する形に沿っていないデータを表す型
type DataError struct {
	Key     string // 問題のあった日付キー（不明な場合は空）
	Message string
}

func (e *DataError) Error() string {
	if e.Key == "" {
		return "invalid data: " + e.Message
	}
	return fmt.Sprintf("invalid data at %q: %s", e.Key, e.Message)
}

// NewDataError はDataErrorを生成するヘルパー関数
func NewDataError(key, msg string) error {
	return &DataError{Key: key, Message: msg}
}

// IsFetchError はerrのチェーンにFetchErrorが含まれるかを返します。
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// IsDataError はerrのチェーンにDataErrorが含まれるかを返します。
func IsDataError(err error) bool {
	var de *DataError
	return errors.As(err, &de)
}
