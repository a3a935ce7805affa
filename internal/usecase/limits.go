package usecase

import "github.com/shopspring/decimal"

// 1明細あたりの数量上限。カートの加算もこの範囲に収める。
const MaxItemQuantity int64 = 10000

// 出品のプール枠上限
const MaxPoolSize int64 = 1000000

// 金額は numeric(12,2) に収まる値（未満）
var maxAmount = decimal.New(1, 10)

func validQuantity(q int64) bool {
	return q >= 1 && q <= MaxItemQuantity
}
