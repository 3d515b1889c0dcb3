package common

const (
	// RedisStreamAlertDispatch carries triggered alert ids from the monitor
	// service to the notifier service.
	RedisStreamAlertDispatch = "alert.dispatch"

	// RedisChannelQuoteUpdates receives the symbol of every accepted quote.
	RedisChannelQuoteUpdates = "market.quote.updated"

	RedisStreamGroup    = "notifier-group"
	RedisStreamConsumer = "notifier-consumer"
)
