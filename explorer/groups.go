package explorer

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/carbocation/dicomexplorer/dicomfile"
)

// StudyGroup is one thumbnail-strip section: every loaded entry sharing
// a StudyInstanceUID, labeled by study date when one parses.
type StudyGroup struct {
	StudyUID string
	Label    string
	Entries  []*Entry
}

// StudyGroups buckets the collection by StudyInstanceUID. Files with no
// study UID group under "". Groups come back sorted by earliest study
// date, undated groups last and then by UID; entries within a group
// sort by instance number, then path. The label is the study date as
// DD.MM.YYYY, or the UID when no entry carries a parseable date.
func (e *Explorer) StudyGroups() []StudyGroup {
	e.mu.RLock()
	defer e.mu.RUnlock()

	byUID := make(map[string][]*Entry)
	for _, path := range e.order {
		entry := e.entries[path]
		uid := strings.TrimSpace(entry.Meta.StudyInstanceUID)
		byUID[uid] = append(byUID[uid], entry)
	}

	type groupDate struct {
		date  time.Time
		dated bool
	}

	groups := make([]StudyGroup, 0, len(byUID))
	dates := make(map[string]groupDate)
	for uid, entries := range byUID {
		sort.Slice(entries, func(i, j int) bool {
			a, b := instanceRank(entries[i].Meta.InstanceNumber), instanceRank(entries[j].Meta.InstanceNumber)
			if a != b {
				return a < b
			}
			return entries[i].Path < entries[j].Path
		})

		earliest, dated := earliestStudyDate(entries)
		dates[uid] = groupDate{date: earliest, dated: dated}

		label := uid
		if dated {
			label = earliest.Format("02.01.2006")
		}

		groups = append(groups, StudyGroup{StudyUID: uid, Label: label, Entries: entries})
	}

	sort.Slice(groups, func(i, j int) bool {
		di, dj := dates[groups[i].StudyUID], dates[groups[j].StudyUID]
		if di.dated != dj.dated {
			return di.dated
		}
		if di.dated && !di.date.Equal(dj.date) {
			return di.date.Before(dj.date)
		}
		return groups[i].StudyUID < groups[j].StudyUID
	})

	return groups
}

func earliestStudyDate(entries []*Entry) (time.Time, bool) {
	var earliest time.Time
	found := false

	for _, entry := range entries {
		raw := strings.TrimSpace(entry.Meta.StudyDate)
		if raw == "" {
			continue
		}
		t, err := dicomfile.ParseDicomDate(raw)
		if err != nil {
			continue
		}
		if !found || t.Before(earliest) {
			earliest = t
			found = true
		}
	}

	return earliest, found
}

// instanceRank orders entries by InstanceNumber, pushing files without
// one to the end of their group.
func instanceRank(instanceNumber string) int {
	n, err := strconv.Atoi(strings.TrimSpace(instanceNumber))
	if err != nil {
		return int(^uint(0) >> 1)
	}

	return n
}
