package dto

import (
	"strconv"
	"strings"

	"github.com/handiism/quran-downloader/internal/model"
)

// RecitersResponse is the body of GET /reciters.
type RecitersResponse struct {
	Reciters []JSONReciter `json:"reciters"`
}

// JSONReciter represents a reciter record of the API.
type JSONReciter struct {
	ID      int          `json:"id"`
	Name    string       `json:"name"`
	Letter  string       `json:"letter"`
	Moshafs []JSONMoshaf `json:"moshaf"`
}

// JSONMoshaf represents one recitation variant of a reciter.
type JSONMoshaf struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Server     string `json:"server"`
	SurahTotal int    `json:"surah_total"`
	MoshafType int    `json:"moshaf_type"`
	SurahList  string `json:"surah_list"`
}

// ToReciter converts JSONReciter to a model.Reciter.
func (jr *JSONReciter) ToReciter() *model.Reciter {
	reciter := &model.Reciter{
		ID:     jr.ID,
		Name:   strings.TrimSpace(jr.Name),
		Letter: jr.Letter,
	}

	for _, jm := range jr.Moshafs {
		reciter.Moshafs = append(reciter.Moshafs, jm.ToMoshaf())
	}

	return reciter
}

// ToMoshaf converts JSONMoshaf to a model.Moshaf.
func (jm *JSONMoshaf) ToMoshaf() *model.Moshaf {
	return &model.Moshaf{
		ID:         jm.ID,
		Name:       jm.Name,
		Server:     jm.Server,
		SurahTotal: jm.SurahTotal,
		Type:       jm.MoshafType,
		Surahs:     ParseSurahList(jm.SurahList),
	}
}

// ParseSurahList parses the comma separated chapter list of a moshaf,
// e.g. "1,2,3,114". Entries that are not numbers are skipped.
func ParseSurahList(list string) []int {
	var surahs []int
	for _, field := range strings.Split(list, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			continue
		}
		surahs = append(surahs, n)
	}
	return surahs
}
