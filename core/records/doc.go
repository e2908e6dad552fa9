// Package records supplies normalized record sets to the matching engine.
//
// A record set is a JSON array of flat objects, or an object carrying that array under
// "records". Decode turns either form into []reconcile.Record, rejecting elements that
// are not objects and dropping null fields.
//
// # Sources
//
//   - StorageSource: record sets in the configured bucket under <records_prefix>/<ref>.
//     A ref without an extension gets ".json". It also implements Store for uploads.
//   - FileSource: the same format on the local filesystem, used by the CLI.
//   - CachedSource: wraps any Source with a TTL cache and singleflight so concurrent job
//     runs over the same ref load it once.
//
// # Usage
//
//	src := records.NewCachedSource(records.NewStorageSource(client, bucket, "records"), time.Minute)
//	sources, err := src.Load(ctx, "stripe/2024-01")
package records
