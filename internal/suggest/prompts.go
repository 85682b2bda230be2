package suggest

import (
	"fmt"
	"strconv"

	"github.com/erazemk/datavault/internal/model"
)

func fieldsPrompt(name string) string {
	return fmt.Sprintf(`Inserisci le informazioni mancanti per un prodotto chiamato %q. `+
		`Fornisci solo le seguenti chiavi in formato JSON con esattamente questi nomi: `+
		`category, year, purchasePrice, purchaseDate, currentValue, image. `+
		`Tipi: string per category, year, purchaseDate (dd/mm/yyyy) e image `+
		`(un URL diretto a un'immagine pertinente al prodotto); `+
		`number senza decimali per purchasePrice e currentValue.`, name)
}

func estimationPrompt(item model.Item, scale Scale) string {
	details := fmt.Sprintf(`Usa questi dettagli per stimare la rarità, la domanda di mercato, `+
		`la longevità e le tendenze di mercato di un articolo:
Nome: %s
Categoria: %s
Anno: %s
Prezzo d'acquisto: %s
Data d'acquisto: %s
Valore attuale: %s

`,
		item.Name, item.Category, item.Year,
		strconv.FormatFloat(item.PurchasePrice, 'f', -1, 64),
		item.PurchaseDate,
		strconv.FormatFloat(item.CurrentValue, 'f', -1, 64),
	)

	if scale == ScaleText {
		return details + `Restituisci solo un oggetto JSON con i campi rarity, marketDemand, ` +
			`longevity, marketTrends. Ogni campo è una breve descrizione testuale. Non includere altro testo.`
	}
	return details + `Restituisci solo un oggetto JSON con i seguenti campi: rarity, marketDemand, ` +
		`longevity, marketTrends. Ogni campo deve essere un numero intero da 1 a 10, dove 1 è il ` +
		`valore più basso e 10 il più alto. Non includere altro testo.`
}
