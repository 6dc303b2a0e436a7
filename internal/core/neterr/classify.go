package neterr

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// StatusCoder is implemented by errors that carry an HTTP-like status.
type StatusCoder interface {
	StatusCode() int
}

// Online reports the platform connectivity flag.
type Online func() bool

// AlwaysOnline is the default connectivity source.
func AlwaysOnline() bool { return true }

var (
	timeoutTerms    = []string{"timeout", "timed out"}
	serverTerms     = []string{"server", "5xx"}
	blockchainTerms = []string{"blockchain", "transaction", "gas", "execution"}
	walletTerms     = []string{"wallet", "sign", "rejected", "cancelled"}
)

// Classify assigns exactly one category to err. Rules are checked in a fixed
// order and the first match wins:
//
//  1. offline platform
//  2. timeout
//  3. server error (status >= 500)
//  4. blockchain error
//  5. wallet error
//  6. unknown
func Classify(err error, online bool) Category {
	if !online {
		return Offline
	}
	if err == nil {
		return Unknown
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Category
	}

	// Status and timeout checks see the whole chain; the term rules only see
	// the root cause so wrapper text such as method names cannot match.
	msg := strings.ToLower(rootCause(err).Error())
	status := statusOf(err)

	switch {
	case isTimeout(err, status) || containsAny(msg, timeoutTerms):
		return Timeout
	case status >= 500 || containsAny(msg, serverTerms):
		return ServerError
	case containsAny(msg, blockchainTerms):
		return BlockchainError
	case containsAny(msg, walletTerms):
		return WalletError
	default:
		return Unknown
	}
}

// Classifier binds Classify to a connectivity source.
type Classifier struct {
	Online Online
}

// NewClassifier returns a classifier reading the flag from online. A nil
// source is treated as always online.
func NewClassifier(online Online) *Classifier {
	if online == nil {
		online = AlwaysOnline
	}
	return &Classifier{Online: online}
}

// Classify categorizes err with the current online flag.
func (c *Classifier) Classify(err error) Category {
	return Classify(err, c.online())
}

// Wrap returns err as a *ClassifiedError. A nil err stays nil.
func (c *Classifier) Wrap(err error) *ClassifiedError {
	if err == nil {
		return nil
	}
	online := c.online()
	category := Classify(err, online)

	var ce *ClassifiedError
	if errors.As(err, &ce) && ce.Category == category {
		return ce
	}
	return &ClassifiedError{
		Message:  UserMessage(err, category),
		Category: category,
		Cause:    err,
	}
}

func (c *Classifier) online() bool {
	if c == nil || c.Online == nil {
		return true
	}
	return c.Online()
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func statusOf(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return 0
}

func isTimeout(err error, status int) bool {
	if status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ETIMEDOUT) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
