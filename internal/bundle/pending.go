package bundle

import "strings"

// ResolvePendingContext resolves entries in PendingContext ("ns:rest"
// references recorded before SourceBasePaths was fully populated) now
// that composition is complete, moving each into Context. Entries whose
// namespace still isn't known are left pending; it is safe to call this
// more than once as more namespaces become available.
func (b *Bundle) ResolvePendingContext() {
	for name, ref := range b.PendingContext {
		ns, rest, found := strings.Cut(ref, ":")
		if !found {
			continue
		}

		if base, ok := b.SourceBasePaths[ns]; ok {
			b.Context[name] = resolveContextPath(base, rest)
			delete(b.PendingContext, name)
			continue
		}

		if ns == b.Name && b.BasePath != "" {
			b.Context[name] = resolveContextPath(b.BasePath, rest)
			delete(b.PendingContext, name)
		}
	}
}
