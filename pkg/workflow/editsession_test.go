package workflow

import (
	"context"
	"testing"

	"github.com/shouni/go-reve-kit/pkg/domain"
	"github.com/shouni/go-reve-kit/pkg/generator"
)

// fakeDetectRunner は呼び出しごとに固定の森を複製して返します。
type fakeDetectRunner struct {
	forest []*domain.DetectedObject
	calls  int
	err    error
}

func (fd *fakeDetectRunner) Run(_ context.Context, _ []byte, _ string) ([]*domain.DetectedObject, error) {
	fd.calls++
	if fd.err != nil {
		return nil, fd.err
	}
	return domain.CloneForest(fd.forest), nil
}

// fakeEditRunner は受け取ったリクエストを記録し、合成画像を返します。
type fakeEditRunner struct {
	maskCalls  []string
	lastLabel  string
	lastBox    domain.BoundingBox
	lastMoves  []generator.ObjectMove
	lastSource string
}

func (fe *fakeEditRunner) MaskEdit(_ context.Context, sourceURL, instruction, label string, box domain.BoundingBox) (domain.ImageVariation, error) {
	fe.maskCalls = append(fe.maskCalls, instruction)
	fe.lastSource = sourceURL
	fe.lastLabel = label
	fe.lastBox = box
	return domain.ImageVariation{ID: "edited", Data: []byte("edited"), MimeType: "image/png"}, nil
}

func (fe *fakeEditRunner) RepositionEdit(_ context.Context, sourceURL string, moves []generator.ObjectMove) (domain.ImageVariation, error) {
	fe.lastSource = sourceURL
	fe.lastMoves = moves
	return domain.ImageVariation{ID: "moved", Data: []byte("moved"), MimeType: "image/png"}, nil
}

func testEditForest() []*domain.DetectedObject {
	return []*domain.DetectedObject{
		{
			ID:    "obj-1",
			Label: "car",
			Box:   domain.BoundingBox{XMin: 100, YMin: 100, XMax: 500, YMax: 400},
			Children: []*domain.DetectedObject{
				{ID: "obj-2", Label: "wheel", Box: domain.BoundingBox{XMin: 150, YMin: 300, XMax: 250, YMax: 400}},
			},
		},
	}
}

func openTestSession(t *testing.T) (*EditSession, *fakeDetectRunner, *fakeEditRunner, *fakeWriter) {
	t.Helper()
	fd := &fakeDetectRunner{forest: testEditForest()}
	fe := &fakeEditRunner{}
	fw := &fakeWriter{}
	es := NewEditSession(fd, fe, fw, "work")

	err := es.Open(context.Background(), domain.ImageVariation{
		ID:       "v1",
		ImageURL: "images/source.png",
		Data:     []byte("source"),
		MimeType: "image/png",
	})
	if err != nil {
		t.Fatalf("Open に失敗したのだ: %v", err)
	}
	return es, fd, fe, fw
}

func TestEditSession_MaskEdit(t *testing.T) {
	es, fd, fe, fw := openTestSession(t)

	id, err := es.SelectByLabel("wheel")
	if err != nil {
		t.Fatalf("ラベル選択に失敗したのだ: %v", err)
	}
	if id != "obj-2" {
		t.Errorf("選択IDが違うのだ: %s", id)
	}

	edited, err := es.ApplyMaskEdit(context.Background(), "赤く塗って")
	if err != nil {
		t.Fatalf("マスク編集に失敗したのだ: %v", err)
	}

	if fe.lastSource != "images/source.png" {
		t.Errorf("編集元URLが違うのだ: %s", fe.lastSource)
	}
	if fe.lastLabel != "wheel" {
		t.Errorf("対象ラベルが違うのだ: %s", fe.lastLabel)
	}
	if fe.lastBox != (domain.BoundingBox{XMin: 150, YMin: 300, XMax: 250, YMax: 400}) {
		t.Errorf("対象ボックスが違うのだ: %+v", fe.lastBox)
	}
	if edited.ImageURL == "" {
		t.Error("編集結果のURLが書き戻されていないのだ")
	}
	if len(fw.paths) != 1 {
		t.Errorf("編集結果が保存されていないのだ: %d", len(fw.paths))
	}
	// 編集結果の再検出が走っているはずなのだ（Open + adopt で 2 回）
	if fd.calls != 2 {
		t.Errorf("再検出の回数が違うのだ: %d", fd.calls)
	}
	if es.Variation().ID != "edited" {
		t.Errorf("現在状態が編集結果に切り替わっていないのだ: %s", es.Variation().ID)
	}
}

func TestEditSession_MaskEditWithoutSelection(t *testing.T) {
	es, _, _, _ := openTestSession(t)

	if _, err := es.ApplyMaskEdit(context.Background(), "塗って"); err == nil {
		t.Fatal("未選択でのマスク編集はエラーになるはずなのだ")
	}
}

func TestEditSession_Reposition(t *testing.T) {
	es, _, fe, _ := openTestSession(t)

	to := domain.BoundingBox{XMin: 500, YMin: 100, XMax: 900, YMax: 400}
	if err := es.MoveObject("obj-1", to); err != nil {
		t.Fatalf("移動の記録に失敗したのだ: %v", err)
	}

	if _, err := es.ApplyReposition(context.Background()); err != nil {
		t.Fatalf("再配置編集に失敗したのだ: %v", err)
	}

	if len(fe.lastMoves) != 1 {
		t.Fatalf("移動リクエスト数が違うのだ: %d", len(fe.lastMoves))
	}
	move := fe.lastMoves[0]
	if move.ID != "obj-1" || move.Label != "car" {
		t.Errorf("移動対象が違うのだ: %+v", move)
	}
	if move.From != (domain.BoundingBox{XMin: 100, YMin: 100, XMax: 500, YMax: 400}) {
		t.Errorf("移動元ボックスが違うのだ: %+v", move.From)
	}
	if move.To != to {
		t.Errorf("移動先ボックスが違うのだ: %+v", move.To)
	}
	// 編集後は上書きが消え、新しい森になっているのだ
	if len(es.session.Overrides) != 0 {
		t.Errorf("編集後に上書きが残っているのだ: %d", len(es.session.Overrides))
	}
}

func TestEditSession_RepositionWithoutMoves(t *testing.T) {
	es, _, _, _ := openTestSession(t)

	if _, err := es.ApplyReposition(context.Background()); err == nil {
		t.Fatal("移動未記録での再配置はエラーになるはずなのだ")
	}
}

func TestEditSession_UndoRedo(t *testing.T) {
	es, _, _, _ := openTestSession(t)

	if es.CanUndo() {
		t.Error("初期状態では戻れないはずなのだ")
	}

	if err := es.Rename("obj-1", "truck"); err != nil {
		t.Fatalf("リネームに失敗したのだ: %v", err)
	}
	to := domain.BoundingBox{XMin: 600, YMin: 100, XMax: 1000, YMax: 400}
	if err := es.MoveObject("obj-1", to); err != nil {
		t.Fatalf("移動の記録に失敗したのだ: %v", err)
	}
	if es.HistoryLen() != 3 {
		t.Fatalf("履歴のエントリ数が違うのだ: %d", es.HistoryLen())
	}

	// 2 回戻ると初期状態（リネーム前・移動記録前）なのだ
	if err := es.Undo(); err != nil {
		t.Fatalf("Undo に失敗したのだ: %v", err)
	}
	if err := es.Undo(); err != nil {
		t.Fatalf("Undo に失敗したのだ: %v", err)
	}
	if got := es.Objects()[0].Label; got != "car" {
		t.Errorf("リネームが巻き戻っていないのだ: %s", got)
	}
	if _, ok := es.session.Overrides["obj-1"]; ok {
		t.Error("移動の記録が巻き戻っていないのだ")
	}
	if err := es.Undo(); err == nil {
		t.Error("履歴の先頭からさらに戻れてしまったのだ")
	}

	// Redo で移動記録まで進み直せるのだ
	if err := es.Redo(); err != nil {
		t.Fatalf("Redo に失敗したのだ: %v", err)
	}
	if err := es.Redo(); err != nil {
		t.Fatalf("Redo に失敗したのだ: %v", err)
	}
	if got, ok := es.session.Overrides["obj-1"]; !ok || got != to {
		t.Errorf("Redo 後の移動記録が違うのだ: %+v", got)
	}

	// 途中まで戻ってから新しい操作をすると、その先の履歴は破棄されるのだ
	if err := es.Undo(); err != nil {
		t.Fatalf("Undo に失敗したのだ: %v", err)
	}
	if err := es.Rename("obj-2", "tire"); err != nil {
		t.Fatalf("リネームに失敗したのだ: %v", err)
	}
	if es.CanRedo() {
		t.Error("分岐後にリドゥが残っているのだ")
	}
	if es.HistoryLen() != 3 {
		t.Errorf("分岐後の履歴数が違うのだ: %d", es.HistoryLen())
	}
}
