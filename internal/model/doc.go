// Package model defines the core data structures used throughout
// the quran-downloader application.
//
// # Catalog records
//
// Reciter and Moshaf mirror the catalog served by the recitation API. A
// reciter offers one or more moshafs (recitation variants), each hosted on its
// own server and covering a subset of the 114 chapters:
//
//	moshaf := reciter.Moshafs[0]
//	if moshaf.Covers(18) {
//	    fmt.Println(moshaf.ResourceURL(18)) // https://server8.mp3quran.net/afs/018.mp3
//	}
//
// # Chapters and paths
//
// Chapter names a surah. ChapterPath computes where a download lands:
//
//	path := model.ChapterPath("/home/user/Downloads", reciter, chapter)
//	// /home/user/Downloads/Mishary Alafasi/Al-Kahf.mp3
//
// # Work
//
// WorkItem is one unit of a batch (a chapter for a reciter) and Outcome is
// what a transfer of that item produced.
package model
