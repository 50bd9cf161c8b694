package sale

// UseCase is the sale repository plus the side effects of settling a sale:
// paid and cancelled-after-payment sales are announced on the broker so stock
// follows.
type UseCase interface {
	Repository
}
