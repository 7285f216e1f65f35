// README: Reply rendering: result lists, review text, quick replies, truncation.
package chat

import (
	"fmt"
	"strings"

	"teaw/internal/category"
	"teaw/internal/modules/province"
	"teaw/internal/modules/trip"
	"teaw/internal/place"
)

// maxDisplayPlaces is the user-facing list size; index positions 1..5 are the
// review references.
const maxDisplayPlaces = 5

// Reply length bounds for the outbound transport.
const (
	maxReplyRunes    = 4800
	truncateAtRunes  = 4750
	truncationMarker = "\n\n... (ข้อความยาวเกินไป ถูกตัดทอน)"
)

// QuickAction is one tappable reply option; Text is sent back literally.
type QuickAction struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Reply is what a turn produces for the transport layer.
type Reply struct {
	Text    string        `json:"text"`
	Actions []QuickAction `json:"actions,omitempty"`
}

var greetings = []string{
	"สวัสดีครับ! 😊",
	"หวัดดีครับ! 👋",
	"ยินดีต้อนรับครับ! 🤗",
}

func modeMenu() []QuickAction {
	return []QuickAction{
		{Label: "🗺️ เส้นทาง + สถานที่แวะ", Text: "โหมด เส้นทางแวะ"},
		{Label: "🏞️ สถานที่ในจังหวัด", Text: "โหมด สถานที่"},
	}
}

func categoryMenu() []QuickAction {
	var items []QuickAction
	for _, c := range category.All() {
		items = append(items, QuickAction{
			Label: fmt.Sprintf("%s %s", c.Emoji(), c),
			Text:  fmt.Sprintf("เลือก %s", c),
		})
	}
	items = append(items,
		QuickAction{Label: "🎯 ทั้งหมด", Text: "เลือก ทั้งหมด"},
		QuickAction{Label: "✅ เสร็จแล้ว", Text: "เสร็จแล้ว"},
	)
	return items
}

func reviewMenu() []QuickAction {
	return []QuickAction{{Label: "🔄 ค้นหาใหม่", Text: "เริ่ม"}}
}

// renderRouteResult builds the route reply and returns the places the user
// can reference by number afterwards.
func renderRouteResult(res *trip.Result, cats []category.Category) (string, []place.Place) {
	var b strings.Builder
	fmt.Fprintf(&b, "เส้นทาง %s ➜ %s\n\n", res.Route.Origin, res.Route.Destination)
	fmt.Fprintf(&b, "ระยะทาง: %s\n", textOr(res.Route.DistanceText, "?"))
	fmt.Fprintf(&b, "เวลา: %s\n\n", textOr(res.Route.DurationText, "?"))

	if len(cats) > 0 {
		fmt.Fprintf(&b, "กรองตาม: %s\n\n", joinCategories(cats))
	}

	if len(res.Stops) == 0 {
		b.WriteString("ไม่มีสถานที่แวะตามหมวดหมู่ที่เลือก\nลองเปลี่ยนหมวดหมู่ดูมั้ยครับ?")
		return b.String(), nil
	}

	displayed := res.Stops
	if len(displayed) > maxDisplayPlaces {
		displayed = displayed[:maxDisplayPlaces]
	}
	fmt.Fprintf(&b, "สถานที่แนะนำ (ท็อป %d แห่ง):\n\n", len(displayed))

	for i, stop := range displayed {
		detour := ""
		if stop.DetourMinutes != nil && *stop.DetourMinutes > 0 {
			detour = fmt.Sprintf(" (+%dนาที)", *stop.DetourMinutes)
		}
		fmt.Fprintf(&b, "%d. %s %s%s\n", i+1, textOr(stop.Name, "ไม่ระบุชื่อ"), ratingText(stop.Rating), detour)
		writePlaceExtras(&b, stop, "", "")
		b.WriteString("\n")
	}

	b.WriteString("พิมพ์ 'รีวิว [ชื่อสถานที่]' หรือพิมพ์แค่ตัวเลข (1-5) เพื่อดูรายละเอียดเพิ่มเติมได้เลยครับ")
	return b.String(), displayed
}

// renderProvinceResult builds the province reply and the referenceable list.
func renderProvinceResult(res *province.Result, cats []category.Category) (string, []place.Place) {
	if len(res.Items) == 0 {
		return fmt.Sprintf("ไม่เจอสถานที่ตามหมวดหมู่ที่เลือกใน %s ครับ 😢", res.Province), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏞️ สถานที่ใน %s", res.Province)
	if len(cats) > 0 {
		fmt.Fprintf(&b, " (หมวด: %s)", joinCategories(cats))
	}
	b.WriteString(":\n\n")

	displayed := res.Items
	if len(displayed) > maxDisplayPlaces {
		displayed = displayed[:maxDisplayPlaces]
	}

	for i, item := range displayed {
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, textOr(item.Name, "ไม่ระบุชื่อ"), ratingText(item.Rating))
		writePlaceExtras(&b, item, "🌡️ ", "🗺️ ")
		b.WriteString("\n")
	}

	b.WriteString("📝 พิมพ์ 'รีวิว [ชื่อสถานที่]' หรือพิมพ์แค่ตัวเลข (1-5) เพื่อดูรายละเอียดเพิ่มเติมได้เลยครับ")
	return b.String(), displayed
}

// writePlaceExtras appends the shared category/weather/map lines.
func writePlaceExtras(b *strings.Builder, p place.Place, weatherPrefix, mapPrefix string) {
	if len(p.Categories) > 0 {
		shown := p.Categories
		if len(shown) > 2 {
			shown = shown[:2]
		}
		var tags []string
		for _, c := range shown {
			tags = append(tags, fmt.Sprintf("%s %s", c.Emoji(), c))
		}
		fmt.Fprintf(b, "   %s\n", strings.Join(tags, " • "))
	}
	if p.Weather != nil && p.Weather.TempC != 0 {
		fmt.Fprintf(b, "   %s%.0f°C %s\n", weatherPrefix, p.Weather.TempC, p.Weather.Condition)
	}
	if p.MapURL != "" {
		fmt.Fprintf(b, "   %s%s\n", mapPrefix, p.MapURL)
	}
}

func renderReview(p place.Place, aiReview string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📝 รีวิว: %s\n", textOr(p.Name, "ไม่ระบุชื่อ"))
	rating := "ไม่มีข้อมูล"
	if p.Rating > 0 {
		rating = fmt.Sprintf("%.1f", p.Rating)
	}
	fmt.Fprintf(&b, "⭐ คะแนน: %s\n", rating)
	if len(p.Categories) > 0 {
		shown := p.Categories
		if len(shown) > 3 {
			shown = shown[:3]
		}
		fmt.Fprintf(&b, "🏷️ ประเภท: %s\n", joinCategories(shown))
	}
	fmt.Fprintf(&b, "\n🤖 วิเคราะห์จาก AI:\n%s\n\n", aiReview)
	b.WriteString("💡 ต้องการรีวิวสถานที่อื่นไหมครับ? (พิมพ์ '1', '2',.. หรือ 'รีวิว [ชื่อสถานที่]') หรือ 'เริ่ม' เพื่อค้นหาใหม่")
	return b.String()
}

func joinCategories(cats []category.Category) string {
	var names []string
	for _, c := range cats {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func ratingText(r float32) string {
	if r > 0 {
		return fmt.Sprintf("⭐%.1f", r)
	}
	return "⭐-"
}

func textOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// truncateReply bounds the outbound text and marks the cut.
func truncateReply(text string) string {
	runes := []rune(text)
	if len(runes) <= maxReplyRunes {
		return text
	}
	return string(runes[:truncateAtRunes]) + truncationMarker
}
