package storybook

import (
	"fmt"
	"strings"

	"github.com/shouni/go-storybook-kit/pkg/domain"
)

// 缶詰ストーリーの本文テンプレート。%s には子供の記述が入るのだ。
var fallbackTemplates = map[domain.Language]string{
	domain.LanguageEnglish: `Once upon a time, there was a magical drawing that came to life! Your wonderful creation - %s - became the hero of an incredible adventure.

Through enchanted forests and over sparkling mountains, our brave character discovered that every line and color in the drawing held special powers. Along the way, they met friendly creatures who became the best of friends.

Together, they learned that imagination is the most powerful magic of all. Every stroke of creativity can build bridges between dreams and reality, creating stories that last forever.

And so, our drawing's adventure reminds us that art and imagination can take us anywhere we want to go, as long as we believe in the magic within ourselves.

The End.`,
	domain.LanguageSpanish: `Había una vez un dibujo mágico que cobró vida! Tu maravillosa creación - %s - se convirtió en el héroe de una aventura increíble.

A través de bosques encantados y sobre montañas brillantes, nuestro valiente personaje descubrió que cada línea y color en el dibujo tenía poderes especiales. En el camino, conocieron criaturas amigables que se convirtieron en los mejores amigos.

Juntos, aprendieron que la imaginación es la magia más poderosa de todas. Cada trazo de creatividad puede construir puentes entre los sueños y la realidad, creando historias que duran para siempre.

Y así, la aventura de nuestro dibujo nos recuerda que el arte y la imaginación pueden llevarnos a cualquier lugar que queramos ir, siempre que creamos en la magia dentro de nosotros mismos.

Fin.`,
	domain.LanguageFrench: `Il était une fois un dessin magique qui a pris vie! Votre merveilleuse création - %s - est devenue le héros d'une aventure incroyable.

À travers des forêts enchantées et par-dessus des montagnes scintillantes, notre brave personnage a découvert que chaque ligne et couleur du dessin avait des pouvoirs spéciaux. En chemin, ils ont rencontré des créatures amicales qui sont devenues les meilleurs amis.

Ensemble, ils ont appris que l'imagination est la magie la plus puissante de toutes. Chaque trait de créativité peut construire des ponts entre les rêves et la réalité, créant des histoires qui durent éternellement.

Et ainsi, l'aventure de notre dessin nous rappelle que l'art et l'imagination peuvent nous emmener partout où nous voulons aller, tant que nous croyons en la magie en nous.

Fin.`,
	domain.LanguageChinese: `从前，有一个神奇的画作活了过来！你的精彩创作——%s——成为了一场不可思议冒险的英雄。

穿过魔法森林，越过闪闪发光的山脉，我们勇敢的角色发现画中的每一条线和每一种颜色都拥有特殊的力量。一路上，他们遇到了友善的生物，成为了最好的朋友。

他们一起学会了想象力是最强大的魔法。每一笔创意都能在梦想与现实之间架起桥梁，创造出永恒的故事。

因此，我们画作的冒险提醒我们，只要相信内心的魔法，艺术和想象力就能带我们去任何想去的地方。

完。`,
}

// FallbackStory は生成パイプラインが完全に失敗した場合の缶詰ストーリーを返します。
// 段落ごとに1ページ。挿絵は無く、Fallback フラグが立つのだ。
func FallbackStory(description string, lang domain.Language) *domain.StoryResult {
	lang = lang.Normalize()
	tmpl, ok := fallbackTemplates[lang]
	if !ok {
		tmpl = fallbackTemplates[domain.LanguageEnglish]
	}

	if strings.TrimSpace(description) == "" {
		description = "your drawing"
	}
	fullText := fmt.Sprintf(tmpl, description)

	paragraphs := strings.Split(fullText, "\n\n")
	pages := make([]domain.Page, 0, len(paragraphs))
	for _, p := range paragraphs {
		if s := strings.TrimSpace(p); s != "" {
			pages = append(pages, domain.Page{Text: s})
		}
	}

	return &domain.StoryResult{
		Title:    GenericTitle(lang),
		Summary:  truncateAtWord(fullText, DefaultTitleConfig().SummaryLimit),
		Pages:    pages,
		FullText: fullText,
		Fallback: true,
	}
}
