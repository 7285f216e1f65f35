// README: Conversation state machine; ordered rules dispatch each user turn.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"teaw/internal/category"
	"teaw/internal/modules/aiquota"
	"teaw/internal/modules/province"
	"teaw/internal/modules/session"
	"teaw/internal/modules/trip"
)

// RoutePlanner runs the route-with-stops pipeline.
type RoutePlanner interface {
	Suggest(ctx context.Context, origin, destination string, cats []category.Category, mode string) (*trip.Result, error)
}

// ProvinceSearcher runs the province pipeline.
type ProvinceSearcher interface {
	Search(ctx context.Context, prov string, cats []category.Category) (*province.Result, error)
}

// TextGenerator answers free-form questions and synthesizes reviews.
// Implementations degrade to Thai error strings rather than failing.
type TextGenerator interface {
	AnswerTravelQuestion(ctx context.Context, question string) string
	SummarizePlaceReviews(ctx context.Context, placeName string, reviews []string, rating float32, categories []string) string
}

// QuotaKeeper limits free-form AI questions per user. Nil means unlimited.
type QuotaKeeper interface {
	Consume(ctx context.Context, uid string) error
}

// ProvinceValidator decides whether free text names a Thai province.
type ProvinceValidator func(name string) bool

// Service drives one conversation turn per call. Stateless apart from the
// injected session store, so one instance serves all users.
type Service struct {
	sessions  *session.Store
	trips     RoutePlanner
	provinces ProvinceSearcher
	ai        TextGenerator
	quota     QuotaKeeper
	validator ProvinceValidator
	rules     []rule
}

// turn carries the per-message context through the rule chain.
type turn struct {
	sess  *session.Session
	text  string
	lower string
}

type rule struct {
	match  func(t *turn) bool
	handle func(ctx context.Context, t *turn) Reply
}

func NewService(sessions *session.Store, trips RoutePlanner, provinces ProvinceSearcher, ai TextGenerator, quota QuotaKeeper, validator ProvinceValidator) *Service {
	s := &Service{
		sessions:  sessions,
		trips:     trips,
		provinces: provinces,
		ai:        ai,
		quota:     quota,
		validator: validator,
	}
	if s.validator == nil {
		s.validator = func(string) bool { return true }
	}
	s.rules = []rule{
		{s.matchGreeting, s.handleGreeting},
		{s.matchAskAI, s.handleAskAI},
		{s.matchWhereToGo, s.handleWhereToGo},
		{s.matchMultiPlace, s.handleMultiPlace},
		{s.matchWhereNext, s.handleWhereNext},
		{s.matchNumericReview, s.handleNumericReview},
		{s.matchNamedReview, s.handleNamedReview},
		{s.matchModeSwitch, s.handleModeSwitch},
		{s.matchRouteEndpoints, s.handleRouteEndpoints},
		{s.matchCategorySelect, s.handleCategorySelect},
		{s.matchRouteDone, s.handleRouteDone},
		{s.matchProvinceDone, s.handleProvinceDone},
		{s.matchProvinceName, s.handleProvinceName},
		{s.matchProvinceInvalid, s.handleProvinceInvalid},
		{s.matchHelp, s.handleHelp},
	}
	return s
}

// HandleText runs one turn for the user. The session is locked for the whole
// turn so concurrent deliveries for the same user cannot interleave.
func (s *Service) HandleText(ctx context.Context, userID, text string) Reply {
	text = strings.TrimSpace(text)
	sess := s.sessions.GetOrCreate(userID)
	sess.Lock()
	defer sess.Unlock()

	t := &turn{sess: sess, text: text, lower: strings.ToLower(text)}
	var reply Reply
	matched := false
	for _, r := range s.rules {
		if r.match(t) {
			reply = r.handle(ctx, t)
			matched = true
			break
		}
	}
	if !matched {
		reply = s.handleFallback(ctx, t)
	}
	reply.Text = truncateReply(reply.Text)
	return reply
}

// --- rule 1: greeting resets everything ---

var greetingKeywords = []string{"สวัสดี", "หวัดดี", "hello", "hi", "start", "เริ่ม"}

func (s *Service) matchGreeting(t *turn) bool {
	return containsAny(t.lower, greetingKeywords)
}

func (s *Service) handleGreeting(_ context.Context, t *turn) Reply {
	t.sess.ResetState()
	text := fmt.Sprintf("%s\nผมช่วยแนะนำเส้นทางและสถานที่ท่องเที่ยวได้ครับ!\n\nเลือกโหมดที่ต้องการ:", greetings[rand.Intn(len(greetings))])
	return Reply{Text: text, Actions: modeMenu()}
}

// --- rule 2: explicit AI question ---

const askAIPrefix = "ถาม ai:"

func (s *Service) matchAskAI(t *turn) bool {
	return strings.HasPrefix(t.lower, askAIPrefix)
}

func (s *Service) handleAskAI(ctx context.Context, t *turn) Reply {
	idx := strings.Index(t.text, ":")
	question := strings.TrimSpace(t.text[idx+1:])
	if question == "" {
		return Reply{Text: "กรุณาพิมพ์คำถามหลัง 'ถาม AI:' ด้วยครับ\nเช่น: ถาม AI: ฤดูฝนเที่ยวทะเลภาคไหนดีที่สุด"}
	}
	if s.ai == nil {
		return Reply{Text: aiUnavailableText}
	}
	if s.quota != nil {
		if err := s.quota.Consume(ctx, t.sess.UserID); err != nil {
			if errors.Is(err, aiquota.ErrQuotaExhausted) {
				return Reply{Text: "ขออภัยครับ โควต้าคำถาม AI ของเดือนนี้หมดแล้ว เดือนหน้าถามใหม่ได้เลยครับ 🙏"}
			}
			log.Printf("chat: quota check failed for %s: %v", t.sess.UserID, err)
		}
	}
	return Reply{Text: s.ai.AnswerTravelQuestion(ctx, question)}
}

// --- rule 3: "where should I go" with a known province ---

var whereToGoKeywords = []string{"ไปไหนดี", "ไปไหนดีไหม", "แนะนำที่ไป", "แนะนำที่เที่ยว"}

func (s *Service) matchWhereToGo(t *turn) bool {
	return containsAny(t.text, whereToGoKeywords)
}

func (s *Service) handleWhereToGo(ctx context.Context, t *turn) Reply {
	if t.sess.Province == "" {
		return Reply{Text: "กรุณาพิมพ์ชื่อจังหวัดก่อนครับ เช่น: นครนายก"}
	}
	if s.ai == nil {
		return Reply{Text: aiUnavailableText}
	}
	prompt := fmt.Sprintf("แนะนำสถานที่ท่องเที่ยวในจังหวัด%s มา 1 แห่ง ตอบสั้นๆ ไม่เกิน 40 ตัวอักษร", t.sess.Province)
	return Reply{Text: s.ai.AnswerTravelQuestion(ctx, prompt)}
}

// --- rule 4: ask for a multi-place list ---

var multiPlaceKeywords = []string{"รีวิวสถานที่", "แนะนำสถานที่", "รีวิว สถานที่", "แนะนำ สถานที่"}

func (s *Service) matchMultiPlace(t *turn) bool {
	return containsAny(t.text, multiPlaceKeywords)
}

func (s *Service) handleMultiPlace(ctx context.Context, t *turn) Reply {
	if t.sess.Province == "" {
		return Reply{Text: "กรุณาระบุจังหวัดก่อนครับ เช่น: เชียงใหม่"}
	}
	if s.ai == nil {
		return Reply{Text: aiUnavailableText}
	}
	prompt := fmt.Sprintf("แนะนำสถานที่ท่องเที่ยวน่าสนใจในจังหวัด%s มา 5 แห่ง พร้อมเหตุผลสั้นๆ ต่อแห่ง", t.sess.Province)
	return Reply{Text: s.ai.AnswerTravelQuestion(ctx, prompt)}
}

// --- rule 5: "where next" relative to the current place ---

const whereNextKeyword = "ไปต่อไหนดี"

func (s *Service) matchWhereNext(t *turn) bool {
	return strings.Contains(t.text, whereNextKeyword)
}

func (s *Service) handleWhereNext(ctx context.Context, t *turn) Reply {
	current := t.sess.CurrentPlace
	if current == "" && len(t.sess.LastResults) > 0 {
		current = t.sess.LastResults[0].Name
	}
	if t.sess.Province == "" || current == "" {
		return Reply{Text: "กรุณาค้นหาจังหวัดหรือเลือกสถานที่ก่อนครับ (เช่น 'รีวิว 1' หรือค้นหาจังหวัดก่อน)"}
	}
	if s.ai == nil {
		return Reply{Text: aiUnavailableText}
	}
	prompt := fmt.Sprintf("ตอนนี้อยู่ที่%s ในจังหวัด%s ควรไปเที่ยวต่อที่ไหนดี แนะนำสั้นๆ", current, t.sess.Province)
	return Reply{Text: s.ai.AnswerTravelQuestion(ctx, prompt)}
}

// --- rules 6-7: review by number or by name ---

func (s *Service) matchNumericReview(t *turn) bool {
	return t.sess.WaitingForReview && isDigits(t.text)
}

func (s *Service) handleNumericReview(ctx context.Context, t *turn) Reply {
	n, err := strconv.Atoi(t.text)
	if err != nil || n < 1 || n > len(t.sess.LastResults) {
		return Reply{Text: "ขอโทษครับ หมายเลขสถานที่ไม่ถูกต้อง", Actions: reviewMenu()}
	}
	return s.reviewAt(ctx, t, n-1)
}

const reviewPrefix = "รีวิว"

func (s *Service) matchNamedReview(t *turn) bool {
	return t.sess.WaitingForReview && strings.HasPrefix(t.text, reviewPrefix)
}

func (s *Service) handleNamedReview(ctx context.Context, t *turn) Reply {
	name := strings.TrimSpace(strings.TrimPrefix(t.text, reviewPrefix))
	if name == "" {
		return Reply{Text: "กรุณาพิมพ์ชื่อสถานที่หลังคำว่า 'รีวิว' ด้วยครับ\nเช่น: รีวิว วัดอรุณราชวราราม", Actions: reviewMenu()}
	}
	if idx, ok := s.findByName(t, name); ok {
		return s.reviewAt(ctx, t, idx)
	}
	return Reply{
		Text:    fmt.Sprintf("ขอโทษครับ ไม่พบสถานที่ชื่อ '%s' ในผลการค้นหาล่าสุด\n\nกรุณาตรวจสอบชื่อและลองอีกครั้ง หรือคัดลอกชื่อจากรายการมาวางได้เลยครับ", name),
		Actions: reviewMenu(),
	}
}

// findByName matches a place in the last results by exact then substring name,
// case-insensitively.
func (s *Service) findByName(t *turn, name string) (int, bool) {
	needle := strings.ToLower(name)
	for i, p := range t.sess.LastResults {
		if strings.ToLower(p.Name) == needle {
			return i, true
		}
	}
	for i, p := range t.sess.LastResults {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			return i, true
		}
	}
	return 0, false
}

func (s *Service) reviewAt(ctx context.Context, t *turn, idx int) Reply {
	p := t.sess.LastResults[idx]
	t.sess.CurrentPlace = p.Name
	if s.ai == nil {
		return Reply{Text: renderReview(p, aiUnavailableText), Actions: reviewMenu()}
	}
	var cats []string
	for _, c := range p.Categories {
		cats = append(cats, string(c))
	}
	summary := s.ai.SummarizePlaceReviews(ctx, p.Name, p.Reviews, p.Rating, cats)
	return Reply{Text: renderReview(p, summary), Actions: reviewMenu()}
}

// --- rule 8: mode switch ---

const modePrefix = "โหมด"

func (s *Service) matchModeSwitch(t *turn) bool {
	return strings.HasPrefix(t.text, modePrefix)
}

func (s *Service) handleModeSwitch(_ context.Context, t *turn) Reply {
	label := strings.TrimSpace(strings.TrimPrefix(t.text, modePrefix))
	t.sess.WaitingForReview = false
	switch {
	case strings.Contains(label, "เส้นทางแวะ"):
		t.sess.Mode = session.ModeRouteWithStops
		t.sess.SelectedCategories = nil
		return Reply{Text: "📍 พิมพ์จุดเริ่มต้นและจุดหมายปลายทาง\nเช่น: กรุงเทพ ไป เชียงใหม่"}
	case strings.Contains(label, "สถานที่"):
		t.sess.Mode = session.ModeProvinceSearch
		t.sess.SelectedCategories = nil
		return Reply{Text: "🏞️ พิมพ์ชื่อจังหวัดที่ต้องการค้นหา\nเช่น: เชียงใหม่"}
	default:
		return Reply{Text: "กรุณาเลือกโหมดที่ถูกต้องครับ", Actions: modeMenu()}
	}
}

// --- rule 9: route mode, origin/destination input ---

const routeSeparator = "ไป"

func (s *Service) matchRouteEndpoints(t *turn) bool {
	return t.sess.Mode == session.ModeRouteWithStops &&
		strings.Contains(t.text, routeSeparator) &&
		!strings.HasPrefix(t.text, "เลือก") &&
		t.text != "เสร็จแล้ว"
}

func (s *Service) handleRouteEndpoints(_ context.Context, t *turn) Reply {
	parts := strings.SplitN(t.text, routeSeparator, 2)
	origin := cleanPlaceName(parts[0])
	destination := cleanPlaceName(parts[1])
	if origin == "" || destination == "" {
		return Reply{Text: "กรุณาพิมพ์ในรูปแบบ: จุดเริ่มต้น ไป จุดหมายปลายทาง"}
	}
	t.sess.Origin = origin
	t.sess.Destination = destination
	t.sess.SelectedCategories = nil
	return Reply{
		Text:    fmt.Sprintf("📍 เส้นทาง: %s ➜ %s\n\nเลือกหมวดหมู่สถานที่ที่สนใจ (เลือกได้หลายอัน):", origin, destination),
		Actions: categoryMenu(),
	}
}

// --- category selection, shared by both modes ---

const selectPrefix = "เลือก"

func (s *Service) matchCategorySelect(t *turn) bool {
	return (t.sess.Mode == session.ModeRouteWithStops || t.sess.Mode == session.ModeProvinceSearch) &&
		strings.HasPrefix(t.text, selectPrefix)
}

func (s *Service) handleCategorySelect(_ context.Context, t *turn) Reply {
	label := strings.TrimSpace(strings.TrimPrefix(t.text, selectPrefix))
	if label == "ทั้งหมด" {
		t.sess.SelectedCategories = category.All()
	} else if c, ok := category.Parse(label); ok {
		t.sess.AddCategory(c)
	}
	selected := joinCategories(t.sess.SelectedCategories)
	if len(t.sess.SelectedCategories) == len(category.All()) {
		selected = "ทั้งหมด"
	}
	return Reply{
		Text:    fmt.Sprintf("✅ เลือกแล้ว: %s\n\nเลือกเพิ่มเติมหรือกด 'เสร็จแล้ว':", selected),
		Actions: categoryMenu(),
	}
}

// --- "done" triggers the search in each mode ---

const doneKeyword = "เสร็จแล้ว"

func (s *Service) matchRouteDone(t *turn) bool {
	return t.sess.Mode == session.ModeRouteWithStops && t.text == doneKeyword
}

func (s *Service) handleRouteDone(ctx context.Context, t *turn) Reply {
	cats := t.sess.SelectedCategories

	// The search consumes the staged state either way.
	defer func() {
		t.sess.Mode = session.ModeNone
		t.sess.SelectedCategories = nil
	}()

	if t.sess.Origin == "" || t.sess.Destination == "" {
		return Reply{Text: "กรุณาระบุจุดเริ่มต้นและจุดหมายก่อนครับ"}
	}
	res, err := s.trips.Suggest(ctx, t.sess.Origin, t.sess.Destination, cats, "driving")
	if err != nil {
		log.Printf("chat: route suggest %s -> %s: %v", t.sess.Origin, t.sess.Destination, err)
		return Reply{Text: fmt.Sprintf("เกิดข้อผิดพลาดครับ: %v\n\nลองตรวจสอบชื่อสถานที่อีกครั้งนะครับ", err)}
	}

	text, displayed := renderRouteResult(res, cats)
	if len(displayed) > 0 {
		t.sess.LastResults = displayed
		t.sess.WaitingForReview = true
		t.sess.CurrentPlace = ""
		return Reply{Text: text, Actions: reviewMenu()}
	}
	return Reply{Text: text}
}

func (s *Service) matchProvinceDone(t *turn) bool {
	return t.sess.Mode == session.ModeProvinceSearch && t.text == doneKeyword
}

func (s *Service) handleProvinceDone(ctx context.Context, t *turn) Reply {
	cats := t.sess.SelectedCategories

	defer func() {
		t.sess.Mode = session.ModeNone
		t.sess.SelectedCategories = nil
	}()

	if t.sess.Province == "" {
		return Reply{Text: "กรุณาระบุจังหวัดก่อนครับ"}
	}
	res, err := s.provinces.Search(ctx, t.sess.Province, cats)
	if err != nil {
		log.Printf("chat: province search %s: %v", t.sess.Province, err)
		return Reply{Text: fmt.Sprintf("ขอโทษครับ หาข้อมูล %s ไม่เจอเลย 😅", t.sess.Province)}
	}

	text, displayed := renderProvinceResult(res, cats)
	if len(displayed) > 0 {
		t.sess.LastResults = displayed
		t.sess.WaitingForReview = true
		t.sess.CurrentPlace = ""
		return Reply{Text: text, Actions: reviewMenu()}
	}
	return Reply{Text: text}
}

// --- rule 10: province mode, province-name input ---

func (s *Service) matchProvinceName(t *turn) bool {
	return t.sess.Mode == session.ModeProvinceSearch &&
		!strings.HasPrefix(t.text, selectPrefix) &&
		t.text != doneKeyword &&
		s.validator(t.text)
}

func (s *Service) handleProvinceName(_ context.Context, t *turn) Reply {
	t.sess.Province = strings.TrimSpace(t.text)
	t.sess.SelectedCategories = nil
	return Reply{
		Text:    fmt.Sprintf("🏞️ จังหวัด: %s\n\nเลือกหมวดหมู่สถานที่ที่สนใจ:", t.sess.Province),
		Actions: categoryMenu(),
	}
}

func (s *Service) matchProvinceInvalid(t *turn) bool {
	return t.sess.Mode == session.ModeProvinceSearch
}

func (s *Service) handleProvinceInvalid(_ context.Context, t *turn) Reply {
	return Reply{Text: "กรุณาพิมพ์ชื่อจังหวัดที่ถูกต้องในประเทศไทยครับ"}
}

// --- rule 11: help ---

var helpKeywords = []string{"ช่วย", "help", "วิธี", "ยังไง"}

func (s *Service) matchHelp(t *turn) bool {
	return containsAny(t.lower, helpKeywords)
}

func (s *Service) handleHelp(_ context.Context, t *turn) Reply {
	text := "🤖 **วิธีใช้งาน:**\n\n" +
		"1️⃣ **เริ่มต้น:** พิมพ์ 'สวัสดี' เพื่อเริ่ม\n" +
		"2️⃣ **เลือกโหมด:** เส้นทาง หรือ สถานที่\n" +
		"3️⃣ **ใส่ข้อมูล:** เช่น 'กรุงเทพ ไป เชียงใหม่' หรือ 'นครนายก'\n" +
		"4️⃣ **เลือกหมวดหมู่:** เลือกสถานที่ที่สนใจ\n" +
		"5️⃣ **ดูรีวิว:** พิมพ์ 'รีวิว 1' หรือ 'รีวิว [ชื่อสถานที่]'\n\n" +
		"✨ **ใหม่!** ถามคำถามทั่วไปกับ AI ได้เลย!\n" +
		"ตัวอย่าง: `ถาม AI: ฤดูฝนเที่ยวทะเลภาคไหนดีที่สุด`"
	return Reply{Text: text}
}

// --- rule 12: fallback ---

func (s *Service) handleFallback(_ context.Context, t *turn) Reply {
	if t.sess.WaitingForReview {
		return Reply{
			Text:    "📝 คุณสามารถขอรีวิวสถานที่ได้ครับ!\n\nพิมพ์ตัวเลข (1-5) หรือ 'รีวิว [ชื่อสถานที่]' ที่ต้องการ\nหรือพิมพ์ 'เริ่ม' เพื่อค้นหาใหม่",
			Actions: reviewMenu(),
		}
	}
	return Reply{
		Text: "ผมไม่เข้าใจครับ 🤔\n\nพิมพ์ 'เริ่ม' เพื่อเลือกโหมดการใช้งาน\nหรือ 'ช่วย' เพื่อดูวิธีใช้งาน\n\n😊 ยินดีช่วยเหลือครับ!",
	}
}

const aiUnavailableText = "ขออภัยครับ ฟังก์ชัน AI ไม่พร้อมใช้งานในขณะนี้ 🙏"

// --- shared helpers ---

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var (
	trailingAskRe      = regexp.MustCompile(`\s*(แวะไหนดี\?*|แวะ\s*ไหนดี|ไหนดี)\s*$`)
	trailingQuestionRe = regexp.MustCompile(`\s*\?+\s*$`)
	trailingCategoryRe = regexp.MustCompile(`\s+(ธรรมชาติ|คาเฟ่|ร้านอาหาร|วัด|ตลาด|จุดชมวิว|แหล่งเรียนรู้)\s*$`)
)

// cleanPlaceName strips chat filler often attached to place names, such as a
// trailing question or category word.
func cleanPlaceName(s string) string {
	s = strings.TrimSpace(s)
	s = trailingAskRe.ReplaceAllString(s, "")
	s = trailingQuestionRe.ReplaceAllString(s, "")
	s = trailingCategoryRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
