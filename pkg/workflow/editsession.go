package workflow

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shouni/go-reve-kit/pkg/asset"
	"github.com/shouni/go-reve-kit/pkg/domain"
	"github.com/shouni/go-reve-kit/pkg/generator"
	"github.com/shouni/go-reve-kit/pkg/history"
	"github.com/shouni/go-reve-kit/pkg/objects"
)

// EditSession は 1 枚の画像に対する対話的な編集セッションなのだ。
// 検出→選択→編集のたびに状態を履歴へ積み、Undo / Redo / JumpTo で
// 任意の時点へ戻れます。編集が成功すると新しい画像が現在の状態になり、
// オブジェクトの森も再検出で張り替えられます。
type EditSession struct {
	detect  DetectRunner
	edit    EditRunner
	writer  OutputWriter
	workDir string

	session *objects.Session
	hist    *history.History
}

// NewEditSession は Manager の Runner 群から編集セッションを組み立てます。
func (m *Manager) NewEditSession() (*EditSession, error) {
	detectRunner, err := m.BuildDetectRunner()
	if err != nil {
		return nil, err
	}
	editRunner, err := m.BuildEditRunner()
	if err != nil {
		return nil, err
	}
	return NewEditSession(detectRunner, editRunner, m.writer, m.workDir), nil
}

// NewEditSession は依存関係を注入して初期化します。
func NewEditSession(detect DetectRunner, edit EditRunner, writer OutputWriter, workDir string) *EditSession {
	return &EditSession{
		detect:  detect,
		edit:    edit,
		writer:  writer,
		workDir: workDir,
	}
}

// Open は画像を解析してセッションを開始し、初期状態を履歴の先頭に積むのだ。
// v には画像データと、編集リクエストの参照に使う ImageURL の両方が必要です。
func (es *EditSession) Open(ctx context.Context, v domain.ImageVariation) error {
	if len(v.Data) == 0 {
		return fmt.Errorf("画像データが空です")
	}
	if v.ImageURL == "" {
		return fmt.Errorf("画像の参照URLが空です")
	}

	forest, err := es.detect.Run(ctx, v.Data, v.MimeType)
	if err != nil {
		return fmt.Errorf("物体検出に失敗しました: %w", err)
	}

	es.session = objects.NewSession(v, forest)
	es.hist = history.New()
	es.pushSnapshot()
	return nil
}

// Objects は現在のオブジェクトの森を返します。
func (es *EditSession) Objects() []*domain.DetectedObject {
	if es.session == nil {
		return nil
	}
	return es.session.Forest
}

// Variation は現在の画像バリエーションを返します。
func (es *EditSession) Variation() domain.ImageVariation {
	if es.session == nil {
		return domain.ImageVariation{}
	}
	return es.session.Variation
}

// Select は ID でオブジェクトを選択します。
func (es *EditSession) Select(id string) error {
	if err := es.requireOpen(); err != nil {
		return err
	}
	return es.session.Select(id)
}

// SelectByLabel はラベル一致で最初のオブジェクトを選択し、その ID を返すのだ。
func (es *EditSession) SelectByLabel(label string) (string, error) {
	if err := es.requireOpen(); err != nil {
		return "", err
	}
	for _, o := range objects.Flatten(es.session.Forest) {
		if o.Label == label {
			return o.ID, es.session.Select(o.ID)
		}
	}
	return "", fmt.Errorf("ラベル %q のオブジェクトが見つかりません", label)
}

// Rename はオブジェクトのラベルを書き換え、履歴へ積みます。
func (es *EditSession) Rename(id, label string) error {
	if err := es.requireOpen(); err != nil {
		return err
	}
	if err := es.session.Rename(id, label); err != nil {
		return err
	}
	es.pushSnapshot()
	return nil
}

// MoveObject はオブジェクトの移動先ボックスを記録し、履歴へ積むのだ。
// この時点では画像は変わらず、ApplyReposition で初めて編集が実行されます。
func (es *EditSession) MoveObject(id string, to domain.BoundingBox) error {
	if err := es.requireOpen(); err != nil {
		return err
	}
	if err := es.session.SetBox(id, to); err != nil {
		return err
	}
	es.pushSnapshot()
	return nil
}

// ApplyMaskEdit は、最初に選択されたオブジェクトの領域だけを対象とする
// マスク制約つき編集を実行し、結果を新しい現在状態として履歴へ積みます。
func (es *EditSession) ApplyMaskEdit(ctx context.Context, instruction string) (domain.ImageVariation, error) {
	if err := es.requireOpen(); err != nil {
		return domain.ImageVariation{}, err
	}
	selected := es.session.Selected()
	if len(selected) == 0 {
		return domain.ImageVariation{}, fmt.Errorf("編集対象のオブジェクトが選択されていません")
	}

	target := selected[0]
	box, _ := es.session.EffectiveBox(target.ID)
	edited, err := es.edit.MaskEdit(ctx, es.session.Variation.ImageURL, instruction, target.Label, box)
	if err != nil {
		return domain.ImageVariation{}, err
	}
	return es.adopt(ctx, edited)
}

// ApplyReposition は、記録済みのボックス上書きをまとめて移動編集として実行するのだ。
func (es *EditSession) ApplyReposition(ctx context.Context) (domain.ImageVariation, error) {
	if err := es.requireOpen(); err != nil {
		return domain.ImageVariation{}, err
	}
	if len(es.session.Overrides) == 0 {
		return domain.ImageVariation{}, fmt.Errorf("移動が記録されたオブジェクトがありません")
	}

	ids := make([]string, 0, len(es.session.Overrides))
	for id := range es.session.Overrides {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	moves := make([]generator.ObjectMove, 0, len(ids))
	for _, id := range ids {
		obj := objects.FindByID(es.session.Forest, id)
		if obj == nil {
			continue
		}
		moves = append(moves, generator.ObjectMove{
			ID:    id,
			Label: obj.Label,
			From:  obj.Box,
			To:    es.session.Overrides[id],
		})
	}

	edited, err := es.edit.RepositionEdit(ctx, es.session.Variation.ImageURL, moves)
	if err != nil {
		return domain.ImageVariation{}, err
	}
	return es.adopt(ctx, edited)
}

// CanUndo は 1 つ前の状態へ戻れるかを返します。
func (es *EditSession) CanUndo() bool {
	return es.hist != nil && es.hist.Current() > 0
}

// CanRedo は 1 つ先の状態へ進めるかを返します。
func (es *EditSession) CanRedo() bool {
	return es.hist != nil && es.hist.Current() < es.hist.Len()-1
}

// Undo は 1 つ前のスナップショットへ戻します。
func (es *EditSession) Undo() error {
	if !es.CanUndo() {
		return fmt.Errorf("これ以上戻れる履歴がありません")
	}
	return es.jump(es.hist.Current() - 1)
}

// Redo は 1 つ先のスナップショットへ進めます。
func (es *EditSession) Redo() error {
	if !es.CanRedo() {
		return fmt.Errorf("これ以上進める履歴がありません")
	}
	return es.jump(es.hist.Current() + 1)
}

// JumpTo は履歴の任意の位置へ移動します。
func (es *EditSession) JumpTo(i int) error {
	if err := es.requireOpen(); err != nil {
		return err
	}
	return es.jump(i)
}

// HistoryLen は履歴のエントリ数を返します。
func (es *EditSession) HistoryLen() int {
	if es.hist == nil {
		return 0
	}
	return es.hist.Len()
}

func (es *EditSession) jump(i int) error {
	snap, err := es.hist.JumpTo(i)
	if err != nil {
		return err
	}
	restored := objects.NewSession(snap.Variation, snap.Forest)
	restored.Overrides = snap.Overrides
	es.session = restored
	return nil
}

// adopt は編集結果を作業ディレクトリへ保存して新しい現在状態にし、
// 再検出した森とともに履歴へ積むのだ。
func (es *EditSession) adopt(ctx context.Context, edited domain.ImageVariation) (domain.ImageVariation, error) {
	fileName := fmt.Sprintf("%s_%s", uuid.NewString()[:8], asset.DefaultVariationFileName)
	path, err := asset.ResolveOutputPath(es.workDir, fileName)
	if err != nil {
		return domain.ImageVariation{}, fmt.Errorf("編集結果のパス解決に失敗しました: %w", err)
	}
	if err := es.writer.Write(ctx, path, bytes.NewReader(edited.Data), edited.MimeType); err != nil {
		return domain.ImageVariation{}, fmt.Errorf("編集結果の保存に失敗しました (%s): %w", path, err)
	}
	edited.ImageURL = path

	forest, err := es.detect.Run(ctx, edited.Data, edited.MimeType)
	if err != nil {
		return domain.ImageVariation{}, fmt.Errorf("編集結果の再検出に失敗しました: %w", err)
	}
	edited.Objects = forest

	es.session = objects.NewSession(edited, forest)
	es.pushSnapshot()
	return edited, nil
}

func (es *EditSession) requireOpen() error {
	if es.session == nil {
		return fmt.Errorf("セッションが開始されていません")
	}
	return nil
}

func (es *EditSession) pushSnapshot() {
	es.hist.Push(history.Snapshot{
		Variation: es.session.Variation,
		Forest:    es.session.Forest,
		Overrides: es.session.CloneOverrides(),
	})
}
