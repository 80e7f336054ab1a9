package catalog

import "github.com/handiism/quran-downloader/internal/model"

// MoshafType identifies a riwaya and recitation style pair in the catalog.
type MoshafType int

const (
	MoshafHafsAnAssemMurattal        MoshafType = 11
	MoshafHafsAnAssem4               MoshafType = 14
	MoshafWarshAnNafiMurattal        MoshafType = 21
	MoshafKhalafAnHamzah             MoshafType = 31
	MoshafAlbiziAnIbnKatheerMurattal MoshafType = 41
	MoshafQalonAnNafi                MoshafType = 51
	MoshafQunbolAnIbnKatheer         MoshafType = 61
	MoshafAssosiAnAbiAmr             MoshafType = 71
	MoshafQalonAnNafiTariqAbiNashit  MoshafType = 81
	MoshafRowisAnYakoob              MoshafType = 91
	MoshafWarshAnNafiTariqAbiBaker   MoshafType = 101
	MoshafAlbiziAnIbnKatheer         MoshafType = 111
	MoshafAldoraiAnAlKisai           MoshafType = 121
	MoshafAldoriAnAbiAmr             MoshafType = 131
	MoshafShobahAnAsim               MoshafType = 151
	MoshafIbnThakwanAnIbnAmer        MoshafType = 161
	MoshafWarshAnNafi                MoshafType = 181
	MoshafHeshamAnAbiAmer            MoshafType = 191
	MoshafIbnJammazAnAbiJafar        MoshafType = 201
	MoshafMolim                      MoshafType = 213
	MoshafMojawwad                   MoshafType = 222
)

// SelectMoshaf picks the moshaf of reciter to download chapter from.
//
// Moshafs are scanned from the last listed to the first. The first one of the
// preferred type decides: it is used if it covers the chapter. Otherwise, if
// allowOther is set, the first moshaf covering the chapter is used. Nil means
// no moshaf of the reciter has the chapter.
func SelectMoshaf(reciter *model.Reciter, chapter int, preferred MoshafType, allowOther bool) *model.Moshaf {
	moshafs := reciter.Moshafs

	for i := len(moshafs) - 1; i >= 0; i-- {
		m := moshafs[i]
		if MoshafType(m.Type) != preferred {
			continue
		}
		if m.Covers(chapter) {
			return m
		}
		break
	}

	if !allowOther {
		return nil
	}

	for i := len(moshafs) - 1; i >= 0; i-- {
		if moshafs[i].Covers(chapter) {
			return moshafs[i]
		}
	}

	return nil
}
