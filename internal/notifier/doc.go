// Package notifier delivers the daily reading message.
//
// The notifier package posts the formatted message to Twitter using OAuth1 user
// credentials, or prints it in dry-run mode. Delivery failures are reported as
// *DeliveryError so the caller can log the status code and the message text.
package notifier
