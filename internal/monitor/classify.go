package monitor

import (
	"fmt"
	"sort"
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// PitchClassName returns the sharp spelling of a note without octave.
func PitchClassName(note int) string {
	if note < 0 {
		return fmt.Sprintf("?%d", note)
	}
	return noteNames[note%12]
}

// NoteName spells a note with octave. An offset of 0 puts note 60 in octave
// 4; the panel uses -1 so that 60 reads C3.
func NoteName(note, octaveOffset int) string {
	if note < 0 || note > 127 {
		return fmt.Sprintf("?%d", note)
	}
	return fmt.Sprintf("%s%d", noteNames[note%12], note/12-1+octaveOffset)
}

// ChordResult is the outcome of classifying a note set. The zero value is
// Unrecognized.
type ChordResult struct {
	Recognized  bool
	Label       string
	Root        string
	Quality     string
	Bass        string
	IsInversion bool
}

// Unrecognized is the classification outcome for note sets without a name.
var Unrecognized = ChordResult{}

// Recognized builds a successful result and its display label.
func Recognized(root, quality, bass string, inversion bool) ChordResult {
	label := root + quality
	if inversion {
		label += "/" + bass
	}
	return ChordResult{
		Recognized:  true,
		Label:       label,
		Root:        root,
		Quality:     quality,
		Bass:        bass,
		IsInversion: inversion,
	}
}

// Classifier names a sorted set of 3 to 6 notes.
type Classifier interface {
	Classify(sortedNotes []int) ChordResult
}

// ClassifierFunc adapts a plain function to Classifier.
type ClassifierFunc func(sortedNotes []int) ChordResult

func (f ClassifierFunc) Classify(sortedNotes []int) ChordResult { return f(sortedNotes) }

type chordTemplate struct {
	quality   string
	intervals []int
}

// Ordered so that the plainer reading of an ambiguous set wins.
var chordTemplates = []chordTemplate{
	{"Major", []int{0, 4, 7}},
	{"Minor", []int{0, 3, 7}},
	{"Dim", []int{0, 3, 6}},
	{"Aug", []int{0, 4, 8}},
	{"sus4", []int{0, 5, 7}},
	{"sus2", []int{0, 2, 7}},
	{"7th", []int{0, 4, 7, 10}},
	{"Maj7", []int{0, 4, 7, 11}},
	{"Min7", []int{0, 3, 7, 10}},
	{"MinMaj7", []int{0, 3, 7, 11}},
	{"Dim7", []int{0, 3, 6, 9}},
	{"m7b5", []int{0, 3, 6, 10}},
	{"Aug7", []int{0, 4, 8, 10}},
	{"6th", []int{0, 4, 7, 9}},
	{"Min6", []int{0, 3, 7, 9}},
	{"9th", []int{0, 2, 4, 7, 10}},
	{"Maj9", []int{0, 2, 4, 7, 11}},
	{"Min9", []int{0, 2, 3, 7, 10}},
	{"11th", []int{0, 2, 4, 5, 7, 10}},
	{"13th", []int{0, 2, 4, 7, 9, 10}},
}

// TemplateClassifier matches the pitch-class set of the notes against a
// fixed table of chord qualities, trying the bass as root first.
type TemplateClassifier struct{}

func (TemplateClassifier) Classify(sortedNotes []int) ChordResult {
	if len(sortedNotes) == 0 {
		return Unrecognized
	}
	notes := append([]int(nil), sortedNotes...)
	sort.Ints(notes)

	var classes [12]bool
	for _, n := range notes {
		classes[((n%12)+12)%12] = true
	}
	bass := ((notes[0] % 12) + 12) % 12

	roots := []int{bass}
	for pc := 0; pc < 12; pc++ {
		if classes[pc] && pc != bass {
			roots = append(roots, pc)
		}
	}

	for _, root := range roots {
		var rel [12]bool
		for pc := 0; pc < 12; pc++ {
			if classes[pc] {
				rel[(pc-root+12)%12] = true
			}
		}
		for _, t := range chordTemplates {
			if matchesTemplate(rel, t.intervals) {
				return Recognized(noteNames[root], t.quality, noteNames[bass], root != bass)
			}
		}
	}
	return Unrecognized
}

func matchesTemplate(rel [12]bool, intervals []int) bool {
	count := 0
	for _, r := range rel {
		if r {
			count++
		}
	}
	if count != len(intervals) {
		return false
	}
	for _, iv := range intervals {
		if !rel[iv] {
			return false
		}
	}
	return true
}

// safeClassify never lets a classifier panic escape; a panic counts as
// Unrecognized.
func safeClassify(c Classifier, sortedNotes []int) (res ChordResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("classifier: panic, treating as unrecognized", "notes", sortedNotes, "panic", r)
			res = Unrecognized
		}
	}()
	return c.Classify(sortedNotes)
}
