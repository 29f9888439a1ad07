// Package pagecontent is the core of a content-management backend: page
// aggregates (galleries, documents, meditations, video and material pages)
// that each own one routable URL slug and a set of polymorphic media
// attachments backed by remote object storage.
//
// The two load-bearing subsystems are the route allocator, which mints
// unique human-readable slugs and keeps a route's lifecycle bound to its
// owning entity, and the media lifecycle processor, which diffs requested
// media against persisted media and keeps the database and the object
// store consistent across create, update, and delete.
//
// Persistence goes through the Repository interface; every page mutation
// runs as one transactional script via Repository.WithTx. Object storage
// goes through the two-method BlobStore gateway and is deliberately outside
// the transaction. Observability is injected through EventSink; the core
// itself never logs.
package pagecontent
