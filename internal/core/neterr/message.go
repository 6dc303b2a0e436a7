package neterr

const unknownMessage = "An unknown error occurred. Please try again."

var messages = map[Category]string{
	Offline:         "You appear to be offline. Please check your internet connection and try again.",
	Timeout:         "The request timed out. The network might be congested or the server might be experiencing issues.",
	ServerError:     "The server encountered an error. Please try again later.",
	BlockchainError: "There was an error with the blockchain transaction. This could be due to network congestion, insufficient gas, or other blockchain issues.",
	WalletError:     "There was an error with your wallet. The transaction may have been rejected or cancelled.",
}

// UserMessage returns the human-readable message for category. Unknown
// failures fall back to the raw error text.
func UserMessage(err error, category Category) string {
	if msg, ok := messages[category]; ok {
		return msg
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return unknownMessage
}

// Describe classifies err and returns its user-facing message.
func Describe(err error, online bool) string {
	return UserMessage(err, Classify(err, online))
}
