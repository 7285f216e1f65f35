// README: Chat state machine tests with fake pipeline and AI collaborators.
package chat

import (
	"context"
	"strings"
	"testing"

	"teaw/internal/category"
	"teaw/internal/modules/aiquota"
	"teaw/internal/modules/province"
	"teaw/internal/modules/session"
	"teaw/internal/modules/trip"
	"teaw/internal/place"
)

type fakeTrips struct {
	lastOrigin, lastDest string
	lastCats             []category.Category
	result               *trip.Result
	err                  error
	calls                int
}

func (f *fakeTrips) Suggest(_ context.Context, origin, destination string, cats []category.Category, _ string) (*trip.Result, error) {
	f.calls++
	f.lastOrigin, f.lastDest, f.lastCats = origin, destination, cats
	return f.result, f.err
}

type fakeProvinces struct {
	lastProvince string
	lastCats     []category.Category
	result       *province.Result
	err          error
	calls        int
}

func (f *fakeProvinces) Search(_ context.Context, prov string, cats []category.Category) (*province.Result, error) {
	f.calls++
	f.lastProvince, f.lastCats = prov, cats
	return f.result, f.err
}

type fakeAI struct {
	lastQuestion  string
	lastPlaceName string
	answer        string
	summary       string
}

func (f *fakeAI) AnswerTravelQuestion(_ context.Context, question string) string {
	f.lastQuestion = question
	if f.answer != "" {
		return f.answer
	}
	return "คำตอบ: " + question
}

func (f *fakeAI) SummarizePlaceReviews(_ context.Context, placeName string, _ []string, _ float32, _ []string) string {
	f.lastPlaceName = placeName
	if f.summary != "" {
		return f.summary
	}
	return "สรุปรีวิว " + placeName
}

type fakeQuota struct {
	err   error
	calls int
}

func (f *fakeQuota) Consume(_ context.Context, _ string) error {
	f.calls++
	return f.err
}

func stopNamed(name string) place.Place {
	return place.Place{Name: name, Rating: 4.5, Categories: []category.Category{category.Cafe}}
}

func newTestService(trips *fakeTrips, provs *fakeProvinces, ai *fakeAI, quota QuotaKeeper) (*Service, *session.Store) {
	store := session.NewStore()
	return NewService(store, trips, provs, ai, quota, nil), store
}

func TestGreetingResetsSession(t *testing.T) {
	svc, store := newTestService(&fakeTrips{}, &fakeProvinces{}, &fakeAI{}, nil)
	ctx := context.Background()

	svc.HandleText(ctx, "u1", "โหมด เส้นทางแวะ")
	svc.HandleText(ctx, "u1", "กรุงเทพ ไป เชียงใหม่")

	sess := store.GetOrCreate("u1")
	if sess.Origin == "" {
		t.Fatalf("expected origin set before greeting")
	}

	reply := svc.HandleText(ctx, "u1", "สวัสดีครับ")
	if sess.Mode != session.ModeNone || sess.Origin != "" || sess.Destination != "" {
		t.Fatalf("greeting should reset state, got mode=%q origin=%q", sess.Mode, sess.Origin)
	}
	if len(reply.Actions) != 2 {
		t.Fatalf("greeting should offer two mode actions, got %d", len(reply.Actions))
	}
	if store.GetOrCreate("u1") != sess {
		t.Fatalf("greeting must keep session identity")
	}
}

func TestRouteFlow(t *testing.T) {
	trips := &fakeTrips{result: &trip.Result{
		Route: place.RouteSummary{Origin: "กรุงเทพมหานคร", Destination: "เชียงใหม่", DistanceText: "696 กม.", DurationText: "8 ชั่วโมง 30 นาที"},
		Stops: []place.Place{stopNamed("ร้านกาแฟดอยตุง"), stopNamed("วัดพระธาตุ")},
	}}
	svc, store := newTestService(trips, &fakeProvinces{}, &fakeAI{}, nil)
	ctx := context.Background()

	svc.HandleText(ctx, "u1", "โหมด เส้นทางแวะ")
	sess := store.GetOrCreate("u1")
	if sess.Mode != session.ModeRouteWithStops {
		t.Fatalf("mode = %q, want route", sess.Mode)
	}

	reply := svc.HandleText(ctx, "u1", "กรุงเทพ ไป เชียงใหม่")
	if sess.Origin != "กรุงเทพ" || sess.Destination != "เชียงใหม่" {
		t.Fatalf("endpoints = %q / %q", sess.Origin, sess.Destination)
	}
	if len(reply.Actions) != len(category.All())+2 {
		t.Fatalf("expected category menu, got %d actions", len(reply.Actions))
	}

	svc.HandleText(ctx, "u1", "เลือก คาเฟ่")
	if len(sess.SelectedCategories) != 1 || sess.SelectedCategories[0] != category.Cafe {
		t.Fatalf("selected = %v", sess.SelectedCategories)
	}

	reply = svc.HandleText(ctx, "u1", "เสร็จแล้ว")
	if trips.calls != 1 {
		t.Fatalf("trips called %d times", trips.calls)
	}
	if trips.lastOrigin != "กรุงเทพ" || trips.lastDest != "เชียงใหม่" {
		t.Fatalf("pipeline got %q -> %q", trips.lastOrigin, trips.lastDest)
	}
	if len(trips.lastCats) != 1 || trips.lastCats[0] != category.Cafe {
		t.Fatalf("pipeline cats = %v", trips.lastCats)
	}
	if !strings.Contains(reply.Text, "เส้นทาง กรุงเทพมหานคร ➜ เชียงใหม่") {
		t.Fatalf("missing route header: %q", reply.Text)
	}
	if !strings.Contains(reply.Text, "1. ร้านกาแฟดอยตุง") {
		t.Fatalf("missing first stop: %q", reply.Text)
	}
	if !sess.WaitingForReview || len(sess.LastResults) != 2 {
		t.Fatalf("review state not armed: waiting=%v results=%d", sess.WaitingForReview, len(sess.LastResults))
	}
	if sess.Mode != session.ModeNone || sess.SelectedCategories != nil {
		t.Fatalf("done must clear mode and categories")
	}
}

func TestRouteDoneWithoutEndpoints(t *testing.T) {
	trips := &fakeTrips{}
	svc, store := newTestService(trips, &fakeProvinces{}, &fakeAI{}, nil)
	ctx := context.Background()

	svc.HandleText(ctx, "u1", "โหมด เส้นทางแวะ")
	reply := svc.HandleText(ctx, "u1", "เสร็จแล้ว")
	if trips.calls != 0 {
		t.Fatalf("pipeline should not run without endpoints")
	}
	if !strings.Contains(reply.Text, "กรุณาระบุจุดเริ่มต้นและจุดหมายก่อนครับ") {
		t.Fatalf("got %q", reply.Text)
	}
	if store.GetOrCreate("u1").Mode != session.ModeNone {
		t.Fatalf("done must clear mode even on missing input")
	}
}

func TestRouteErrorReply(t *testing.T) {
	trips := &fakeTrips{err: context.DeadlineExceeded}
	svc, _ := newTestService(trips, &fakeProvinces{}, &fakeAI{}, nil)
	ctx := context.Background()

	svc.HandleText(ctx, "u1", "โหมด เส้นทางแวะ")
	svc.HandleText(ctx, "u1", "กรุงเทพ ไป เชียงใหม่")
	reply := svc.HandleText(ctx, "u1", "เสร็จแล้ว")
	if !strings.Contains(reply.Text, "เกิดข้อผิดพลาดครับ") {
		t.Fatalf("got %q", reply.Text)
	}
}

func TestEndpointsStripTrailingQuestion(t *testing.T) {
	svc, store := newTestService(&fakeTrips{}, &fakeProvinces{}, &fakeAI{}, nil)
	ctx := context.Background()

	svc.HandleText(ctx, "u1", "โหมด เส้นทางแวะ")
	svc.HandleText(ctx, "u1", "กรุงเทพ ไป เชียงใหม่ แวะไหนดี?")
	sess := store.GetOrCreate("u1")
	if sess.Destination != "เชียงใหม่" {
		t.Fatalf("destination = %q", sess.Destination)
	}
}

func TestProvinceFlow(t *testing.T) {
	provs := &fakeProvinces{result: &province.Result{
		Province: "เชียงใหม่",
		Items:    []place.Place{stopNamed("ดอยสุเทพ")},
	}}
	svc, store := newTestService(&fakeTrips{}, provs, &fakeAI{}, nil)
	ctx := context.Background()

	svc.HandleText(ctx, "u1", "โหมด สถานที่")
	sess := store.GetOrCreate("u1")
	if sess.Mode != session.ModeProvinceSearch {
		t.Fatalf("mode = %q", sess.Mode)
	}

	svc.HandleText(ctx, "u1", "เชียงใหม่")
	if sess.Province != "เชียงใหม่" {
		t.Fatalf("province = %q", sess.Province)
	}

	svc.HandleText(ctx, "u1", "เลือก ทั้งหมด")
	if len(sess.SelectedCategories) != len(category.All()) {
		t.Fatalf("select all stored %d categories", len(sess.SelectedCategories))
	}

	reply := svc.HandleText(ctx, "u1", "เสร็จแล้ว")
	if provs.calls != 1 || provs.lastProvince != "เชียงใหม่" {
		t.Fatalf("pipeline calls=%d province=%q", provs.calls, provs.lastProvince)
	}
	if !strings.Contains(reply.Text, "🏞️ สถานที่ใน เชียงใหม่") {
		t.Fatalf("missing header: %q", reply.Text)
	}
	if !sess.WaitingForReview {
		t.Fatalf("review state not armed")
	}
}

func TestProvinceValidatorRejects(t *testing.T) {
	store := session.NewStore()
	svc := NewService(store, &fakeTrips{}, &fakeProvinces{}, &fakeAI{}, nil, func(name string) bool {
		return name == "เชียงใหม่"
	})
	ctx := context.Background()

	svc.HandleText(ctx, "u1", "โหมด สถานที่")
	reply := svc.HandleText(ctx, "u1", "ไม่ใช่จังหวัด")
	if !strings.Contains(reply.Text, "กรุณาพิมพ์ชื่อจังหวัดที่ถูกต้องในประเทศไทยครับ") {
		t.Fatalf("got %q", reply.Text)
	}
	if store.GetOrCreate("u1").Province != "" {
		t.Fatalf("rejected name must not be stored")
	}
}

func primeReviewState(t *testing.T, svc *Service, provs *fakeProvinces) {
	t.Helper()
	ctx := context.Background()
	svc.HandleText(ctx, "u1", "โหมด สถานที่")
	svc.HandleText(ctx, "u1", "เชียงใหม่")
	reply := svc.HandleText(ctx, "u1", "เสร็จแล้ว")
	if provs.calls == 0 || !strings.Contains(reply.Text, "สถานที่ใน") {
		t.Fatalf("priming search failed: %q", reply.Text)
	}
}

func TestNumericReview(t *testing.T) {
	provs := &fakeProvinces{result: &province.Result{
		Province: "เชียงใหม่",
		Items:    []place.Place{stopNamed("ดอยสุเทพ"), stopNamed("วัดเจดีย์หลวง")},
	}}
	ai := &fakeAI{}
	svc, store := newTestService(&fakeTrips{}, provs, ai, nil)
	primeReviewState(t, svc, provs)

	reply := svc.HandleText(context.Background(), "u1", "2")
	if ai.lastPlaceName != "วัดเจดีย์หลวง" {
		t.Fatalf("summarized %q", ai.lastPlaceName)
	}
	if !strings.Contains(reply.Text, "📝 รีวิว: วัดเจดีย์หลวง") {
		t.Fatalf("got %q", reply.Text)
	}
	if store.GetOrCreate("u1").CurrentPlace != "วัดเจดีย์หลวง" {
		t.Fatalf("current place not recorded")
	}
}

func TestNumericReviewOutOfRange(t *testing.T) {
	provs := &fakeProvinces{result: &province.Result{
		Province: "เชียงใหม่",
		Items:    []place.Place{stopNamed("ดอยสุเทพ")},
	}}
	svc, store := newTestService(&fakeTrips{}, provs, &fakeAI{}, nil)
	primeReviewState(t, svc, provs)

	reply := svc.HandleText(context.Background(), "u1", "9")
	if !strings.Contains(reply.Text, "หมายเลขสถานที่ไม่ถูกต้อง") {
		t.Fatalf("got %q", reply.Text)
	}
	if store.GetOrCreate("u1").CurrentPlace != "" {
		t.Fatalf("invalid index must not set current place")
	}
}

func TestNamedReview(t *testing.T) {
	provs := &fakeProvinces{result: &province.Result{
		Province: "เชียงใหม่",
		Items:    []place.Place{stopNamed("ดอยสุเทพ"), stopNamed("Wat Chedi Luang")},
	}}
	ai := &fakeAI{}
	svc, _ := newTestService(&fakeTrips{}, provs, ai, nil)
	primeReviewState(t, svc, provs)

	reply := svc.HandleText(context.Background(), "u1", "รีวิว wat chedi")
	if ai.lastPlaceName != "Wat Chedi Luang" {
		t.Fatalf("summarized %q", ai.lastPlaceName)
	}
	if !strings.Contains(reply.Text, "📝 รีวิว: Wat Chedi Luang") {
		t.Fatalf("got %q", reply.Text)
	}

	reply = svc.HandleText(context.Background(), "u1", "รีวิว ไม่มีที่นี่")
	if !strings.Contains(reply.Text, "ไม่พบสถานที่ชื่อ 'ไม่มีที่นี่'") {
		t.Fatalf("got %q", reply.Text)
	}
}

func TestAskAI(t *testing.T) {
	ai := &fakeAI{answer: "ไปทะเลภาคใต้ครับ"}
	svc, _ := newTestService(&fakeTrips{}, &fakeProvinces{}, ai, nil)

	reply := svc.HandleText(context.Background(), "u1", "ถาม AI: ฤดูฝนเที่ยวไหนดี")
	if reply.Text != "ไปทะเลภาคใต้ครับ" {
		t.Fatalf("got %q", reply.Text)
	}
	if ai.lastQuestion != "ฤดูฝนเที่ยวไหนดี" {
		t.Fatalf("question = %q", ai.lastQuestion)
	}

	reply = svc.HandleText(context.Background(), "u1", "ถาม AI:")
	if !strings.Contains(reply.Text, "กรุณาพิมพ์คำถามหลัง") {
		t.Fatalf("empty question should re-prompt, got %q", reply.Text)
	}
}

func TestAskAIQuota(t *testing.T) {
	ai := &fakeAI{answer: "ตอบแล้ว"}
	quota := &fakeQuota{err: aiquota.ErrQuotaExhausted}
	svc, _ := newTestService(&fakeTrips{}, &fakeProvinces{}, ai, quota)

	reply := svc.HandleText(context.Background(), "u1", "ถาม AI: อะไรก็ได้")
	if !strings.Contains(reply.Text, "โควต้าคำถาม AI") {
		t.Fatalf("got %q", reply.Text)
	}
	if quota.calls != 1 {
		t.Fatalf("quota consulted %d times", quota.calls)
	}

	quota.err = nil
	reply = svc.HandleText(context.Background(), "u1", "ถาม AI: อะไรก็ได้")
	if reply.Text != "ตอบแล้ว" {
		t.Fatalf("got %q", reply.Text)
	}
}

func TestWhereToGoRequiresProvince(t *testing.T) {
	ai := &fakeAI{}
	svc, store := newTestService(&fakeTrips{}, &fakeProvinces{}, ai, nil)
	ctx := context.Background()

	reply := svc.HandleText(ctx, "u1", "ไปไหนดี")
	if !strings.Contains(reply.Text, "กรุณาพิมพ์ชื่อจังหวัดก่อนครับ") {
		t.Fatalf("got %q", reply.Text)
	}

	store.GetOrCreate("u1").Province = "นครนายก"
	svc.HandleText(ctx, "u1", "ไปไหนดี")
	if !strings.Contains(ai.lastQuestion, "นครนายก") {
		t.Fatalf("prompt = %q", ai.lastQuestion)
	}
}

func TestWhereNextUsesCurrentPlace(t *testing.T) {
	provs := &fakeProvinces{result: &province.Result{
		Province: "เชียงใหม่",
		Items:    []place.Place{stopNamed("ดอยสุเทพ")},
	}}
	ai := &fakeAI{}
	svc, store := newTestService(&fakeTrips{}, provs, ai, nil)
	primeReviewState(t, svc, provs)
	store.GetOrCreate("u1").Province = "เชียงใหม่"

	svc.HandleText(context.Background(), "u1", "ไปต่อไหนดี")
	if !strings.Contains(ai.lastQuestion, "ดอยสุเทพ") {
		t.Fatalf("prompt should reference first result, got %q", ai.lastQuestion)
	}
}

func TestFallback(t *testing.T) {
	svc, _ := newTestService(&fakeTrips{}, &fakeProvinces{}, &fakeAI{}, nil)

	reply := svc.HandleText(context.Background(), "u1", "xyz")
	if !strings.Contains(reply.Text, "ผมไม่เข้าใจครับ") {
		t.Fatalf("got %q", reply.Text)
	}
}

func TestReplyTruncation(t *testing.T) {
	ai := &fakeAI{answer: strings.Repeat("ก", 6000)}
	svc, _ := newTestService(&fakeTrips{}, &fakeProvinces{}, ai, nil)

	reply := svc.HandleText(context.Background(), "u1", "ถาม AI: ยาวๆ")
	runes := []rune(reply.Text)
	if !strings.HasSuffix(reply.Text, truncationMarker) {
		t.Fatalf("missing truncation marker")
	}
	if len(runes) != truncateAtRunes+len([]rune(truncationMarker)) {
		t.Fatalf("truncated length = %d", len(runes))
	}
}

func TestCleanPlaceName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"กรุงเทพ", "กรุงเทพ"},
		{"เชียงใหม่ แวะไหนดี?", "เชียงใหม่"},
		{"เชียงใหม่ ไหนดี", "เชียงใหม่"},
		{"เชียงใหม่?", "เชียงใหม่"},
		{"เชียงใหม่ คาเฟ่", "เชียงใหม่"},
		{"  ขอนแก่น  ", "ขอนแก่น"},
	}
	for _, tc := range cases {
		if got := cleanPlaceName(tc.in); got != tc.want {
			t.Errorf("cleanPlaceName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
