package article

// ResolveDBID resolves the persistence identifier used for favorite
// operations. "_id" wins over "id"; object-shaped identifiers are coerced to
// their string form during decoding. An empty result means the article has
// no persisted identity and favorite actions must stay disabled for it.
func ResolveDBID(raw RawRecord) string {
	if !raw.ID.IsZero() {
		return raw.ID.String()
	}
	return raw.LegacyID.String()
}

// CanFavorite reports whether an article carries a persistence identifier.
func (a Article) CanFavorite() bool {
	return a.DBID != ""
}
