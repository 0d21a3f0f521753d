package common

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// DefaultMaxRetries bounds how many times a Discord call is retried after the first attempt
const DefaultMaxRetries = 3

// RetryPolicy creates the backoff schedule for Discord calls
type RetryPolicy func() backoff.BackOff

// DefaultRetryPolicy retries with exponential backoff between 250ms and 4s
func DefaultRetryPolicy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 4 * time.Second
	b.MaxElapsedTime = 20 * time.Second
	return b
}

// Retry runs op with bounded exponential backoff. Errors that retrying cannot fix
// (unknown message, missing permissions, bad request) stop immediately.
func Retry(ctx context.Context, operation string, policy RetryPolicy, op func() error) error {
	if policy == nil {
		policy = DefaultRetryPolicy
	}
	b := backoff.WithContext(backoff.WithMaxRetries(policy(), DefaultMaxRetries), ctx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		log.WithFields(log.Fields{
			"operation": operation,
			"attempt":   attempt,
			"error":     err,
		}).Warn("Discord call failed, retrying")
		return err
	}, b)
}

// IsRetryable reports whether a Discord error may succeed on another attempt
func IsRetryable(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		status := restErr.Response.StatusCode
		return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
	}
	return true
}

// IsUnknownMessage reports whether Discord says the message no longer exists
func IsUnknownMessage(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMessage {
		return true
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}
