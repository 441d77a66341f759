// Package retry retries the network steps of a package push: object uploads
// to S3 or Azure Blob Storage and catalog writes to PostgreSQL.
//
// # Example Usage
//
//	executor := retry.NewExecutor(retry.NewTransferErrorClassifier(), retry.NewExponentialBackoff(3))
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return uploadObject(ctx, key, body)
//	})
//
// # Error Classification
//
// TransferErrorClassifier treats throttling, HTTP 5xx responses, dropped
// connections and PostgreSQL connection/resource errors as transient.
// Everything else, including access errors and cancellation, fails at once.
//
// # Thread Safety
//
// Executor instances are safe for concurrent use. Use WithOnRetry() to create
// independent configurations per goroutine.
package retry
