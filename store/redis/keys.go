package redis

// Key prefixes for primary entity storage.
const (
	prefixContentType = "folio:ctype:"
	prefixEntry       = "folio:entry:"
	prefixWebhook     = "folio:wh:"
	prefixTask        = "folio:task:"
	prefixSite        = "folio:site:"
	prefixForm        = "folio:form:"
	prefixSubmission  = "folio:fsub:"
	prefixMedia       = "folio:media:"
)

// Key prefixes for values kept beside an entity so they can be changed
// atomically without rewriting it.
const (
	hWebhookStats = "folio:h:wh:stats:"   // + webhook ID
	lWebhookLogs  = "folio:l:wh:logs:"    // + webhook ID
	hSiteStats    = "folio:h:site:stats:" // + site ID
)

// Key prefixes for unique indexes.
const (
	uniqueContentTypeSlug = "folio:u:ctype:slug:"
	uniqueFormSlug        = "folio:u:form:slug:"
)

// Key prefixes for sorted set indexes.
const (
	zContentTypeAll = "folio:z:ctype:all"
	zEntryAll       = "folio:z:entry:all"
	zEntryType      = "folio:z:entry:ctype:" // + content type ID
	zWebhookAll     = "folio:z:wh:all"
	zTaskPending    = "folio:z:task:pending"
	zTaskClaimed    = "folio:z:task:claimed"
	zSiteAll        = "folio:z:site:all"
	zFormAll        = "folio:z:form:all"
	zFormSubs       = "folio:z:fsub:form:" // + form ID
	zMediaAll       = "folio:z:media:all"
)

// Key prefixes for set indexes.
const (
	sWebhookActive = "folio:s:wh:active"
	sSiteKeyPrefix = "folio:s:site:key:" // + API key prefix
)

// entityKey returns the primary key for an entity.
func entityKey(prefix, id string) string {
	return prefix + id
}
