// README: Closed travel-interest taxonomy and the place classifier.
package category

import "strings"

// Category is one of the fixed travel-interest tags. The value is the Thai
// display label, which is also what users type and what quick replies send.
type Category string

const (
	Nature     Category = "ธรรมชาติ"
	Temple     Category = "วัด"
	Cafe       Category = "คาเฟ่"
	Restaurant Category = "ร้านอาหาร"
	Learning   Category = "แหล่งเรียนรู้"
	Viewpoint  Category = "จุดชมวิว"
	Market     Category = "ชุมชน/ตลาด"
)

// All returns the taxonomy in display order.
func All() []Category {
	return []Category{Nature, Temple, Cafe, Restaurant, Learning, Viewpoint, Market}
}

type info struct {
	Emoji       string
	Description string
}

var infos = map[Category]info{
	Nature:     {"🏞️", "อุทยาน น้ำตก ภูเขา"},
	Temple:     {"🛕", "วัด โบสถ์ สถานที่ศักดิ์สิทธิ์"},
	Cafe:       {"☕", "คาเฟ่ เบเกอรี่"},
	Restaurant: {"🍽️", "ร้านอาหาร อาหารท้องถิ่น"},
	Learning:   {"📚", "พิพิธภัณฑ์ หอศิลป์"},
	Viewpoint:  {"🌅", "จุดชมวิว ทิวทัศน์"},
	Market:     {"🏪", "ตลาด ชุมชน ห้าง"},
}

func (c Category) Emoji() string       { return infos[c].Emoji }
func (c Category) Description() string { return infos[c].Description }

// Parse maps a user-typed label onto the closed set.
func Parse(label string) (Category, bool) {
	c := Category(strings.TrimSpace(label))
	if _, ok := infos[c]; ok {
		return c, true
	}
	return "", false
}

// typeCodes maps each tag to the Google Places type codes that imply it.
// Kept deliberately narrow per tag to reduce overlap; tourist_attraction
// belongs to Viewpoint and doubles as the classifier fallback.
var typeCodes = map[Category][]string{
	Nature:     {"park", "natural_feature", "campground", "rv_park", "zoo"},
	Temple:     {"place_of_worship", "hindu_temple", "mosque", "church"},
	Cafe:       {"cafe", "bakery"},
	Restaurant: {"restaurant", "meal_takeaway", "food"},
	Learning:   {"museum", "library", "art_gallery", "book_store", "university"},
	Viewpoint:  {"tourist_attraction"},
	Market:     {"market", "shopping_mall", "store", "supermarket"},
}

// keywords are bilingual name fragments that imply a tag when the type codes
// give nothing away.
var keywords = map[Category][]string{
	Nature:     {"national park", "waterfall", "mountain", "beach", "forest", "nature", "อุทยาน", "น้ำตก", "ภูเขา", "ป่า", "ชายหาด", "สวนสัตว์"},
	Temple:     {"temple", "wat", "mosque", "church", "วัด", "โบสถ์", "มัสยิด", "ศาลเจ้า"},
	Cafe:       {"cafe", "coffee", "bakery", "คาเฟ่", "กาแฟ", "เบเกอรี่"},
	Restaurant: {"restaurant", "food", "ร้านอาหาร", "อาหาร", "โรงแรม"},
	Learning:   {"museum", "library", "gallery", "พิพิธภัณฑ์", "ห้องสมุด", "หอศิลป์"},
	Viewpoint:  {"viewpoint", "scenic", "skywalk", "จุดชมวิว", "ทิวทัศน์", "สกายวอล์ค"},
	Market:     {"market", "shopping", "mall", "ตลาด", "ห้าง", "ชุมชน"},
}

// TypeCodes returns the provider type codes for a tag.
func TypeCodes(c Category) []string { return typeCodes[c] }

// Keywords returns the bilingual name keywords for a tag.
func Keywords(c Category) []string { return keywords[c] }

// Classify assigns zero or more tags to a place from its provider type codes
// and its name. Type codes are consulted first, then name keywords. A place
// matching nothing but carrying the generic tourist_attraction type falls
// back to Viewpoint.
func Classify(placeTypes []string, name string) []Category {
	lname := strings.ToLower(name)
	var out []Category

	for _, c := range All() {
		matched := false
		for _, t := range typeCodes[c] {
			if containsString(placeTypes, t) {
				matched = true
				break
			}
		}
		if !matched {
			for _, kw := range keywords[c] {
				if strings.Contains(lname, strings.ToLower(kw)) {
					matched = true
					break
				}
			}
		}
		if matched {
			out = append(out, c)
		}
	}

	if len(out) == 0 && containsString(placeTypes, "tourist_attraction") {
		out = append(out, Viewpoint)
	}
	return out
}

// Intersects reports whether the two tag sets share a member.
func Intersects(a, b []Category) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func containsString(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}
