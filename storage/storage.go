package storage

import (
	"context"
	"io"
)

// ProofUploadResult описывает сохранённый скриншот оплаты. Ядро хранит
// только Key; URL отдаётся клиенту и админ-панели для просмотра.
type ProofUploadResult struct {
	Key string
	URL string
}

// PaymentProofStore хранит скриншоты платёжных подтверждений. Платёж
// верифицируется человеком, стор отвечает только за байты и локатор.
type PaymentProofStore interface {
	UploadProof(ctx context.Context, contentType string, reader io.Reader) (*ProofUploadResult, error)
	DeleteProof(ctx context.Context, key string) error
	PublicURL(key string) string
}
