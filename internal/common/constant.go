package common

// LocalKeyPrefix is prepended to the flattened (owner, scope, id) triple
// when addressing rows in the local cache tier.
const LocalKeyPrefix = "doc_"
