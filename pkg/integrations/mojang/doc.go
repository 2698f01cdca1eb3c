// Package mojang provides a client for the Mojang game metadata services.
//
// It covers the version manifest (with If-Modified-Since revalidation),
// version metadata documents, asset indexes and the Java runtime catalogue.
// Version documents and asset indexes are returned as raw bytes so callers
// can persist them byte-identical to what the server sent.
package mojang
