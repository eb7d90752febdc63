// Package observability provides logging and metrics for the Figshare
// deposit connector.
//
// # Logging
//
// Create a logger from configuration:
//
//	logger := observability.NewLogger(observability.LoggingConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stdout",
//	})
//
// Deposits log with a deposit_id, and with an article_id once the article exists:
//
//	logger = observability.WithDepositContext(logger, depositID, "export.zip")
//	logger = observability.WithArticleContext(logger, articleID)
//
// # Metrics
//
//	metrics := observability.NewMetrics("figshare_connector")
//	metrics.RecordDepositStarted()
//
// Metrics also implements figshare.RequestObserver, so it can be attached to
// the API client to count and time every remote request.
package observability
