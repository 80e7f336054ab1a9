// Package catalog provides access to the recitation catalog: the reciters
// served by the mp3quran.net v3 API and the static table of chapter names.
//
// # Reciters
//
// The catalog is fetched once and cached for the life of the process:
//
//	cat := catalog.New(client, catalog.DefaultOptions())
//	if err := cat.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	for _, name := range cat.SortedNames() {
//	    fmt.Println(name)
//	}
//
// # Resolving audio URLs
//
// A reciter offers several moshafs (recitation variants), each covering some
// chapters on its own server. ResolveResourceURL prefers the configured
// moshaf type and falls back to any moshaf covering the chapter:
//
//	url, err := cat.ResolveResourceURL(ctx, 18, reciterID)
//	if errors.Is(err, catalog.ErrNotFound) {
//	    // no moshaf of this reciter has surah 18
//	}
//
// # Chapters
//
// The 114 chapter names are embedded in the binary and looked up by number or
// name:
//
//	ch, ok := catalog.Chapters().Lookup("al-kahf")
package catalog
