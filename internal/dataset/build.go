package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/abelbrown/versefeed/internal/logging"
	"github.com/abelbrown/versefeed/internal/model"
)

// Export is the JSON shape Build consumes.
type Export struct {
	Books []ExportBook `json:"books"`
	// Tags maps a category to the locators ("John 3:16") tagged with it.
	Tags map[string][]string `json:"tags"`
}

type ExportBook struct {
	Name     string          `json:"name"`
	Chapters []ExportChapter `json:"chapters"`
}

type ExportChapter struct {
	Number int           `json:"number"`
	Verses []ExportVerse `json:"verses"`
}

type ExportVerse struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// LoadExport decodes an export from r.
func LoadExport(r io.Reader) (*Export, error) {
	var exp Export
	if err := json.NewDecoder(r).Decode(&exp); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	return &exp, nil
}

// Table models. The column names are what the store queries against.

type Book struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

type Chapter struct {
	ID     uint `gorm:"primaryKey"`
	BookID uint `gorm:"index;not null"`
	Number int  `gorm:"not null"`
}

type Verse struct {
	ID          uint   `gorm:"primaryKey"`
	ChapterID   uint   `gorm:"index;not null"`
	VerseNumber int    `gorm:"not null"`
	Text        string `gorm:"not null"`
}

func (Verse) TableName() string { return "verses_web" }

type Tag struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

type VerseTag struct {
	VerseID uint `gorm:"primaryKey"`
	TagID   uint `gorm:"primaryKey;index"`
}

// Stats summarizes a build.
type Stats struct {
	Books    int
	Chapters int
	Verses   int
	Tags     int
	Tagged   int
}

// Build writes exp to a fresh SQLite database at path, replacing any
// existing file.
func Build(path string, exp *Export) (Stats, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return Stats{}, fmt.Errorf("remove old dataset: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return Stats{}, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	if err := db.AutoMigrate(&Book{}, &Chapter{}, &Verse{}, &Tag{}, &VerseTag{}); err != nil {
		return Stats{}, fmt.Errorf("failed to migrate dataset: %w", err)
	}

	var stats Stats
	err = db.Transaction(func(tx *gorm.DB) error {
		verseIDs := make(map[model.Locator]uint)

		for _, eb := range exp.Books {
			book := Book{Name: eb.Name}
			if err := tx.Create(&book).Error; err != nil {
				return fmt.Errorf("insert book %q: %w", eb.Name, err)
			}
			stats.Books++

			for _, ec := range eb.Chapters {
				chapter := Chapter{BookID: book.ID, Number: ec.Number}
				if err := tx.Create(&chapter).Error; err != nil {
					return fmt.Errorf("insert %s %d: %w", eb.Name, ec.Number, err)
				}
				stats.Chapters++

				if len(ec.Verses) == 0 {
					continue
				}
				verses := make([]Verse, len(ec.Verses))
				for i, ev := range ec.Verses {
					verses[i] = Verse{ChapterID: chapter.ID, VerseNumber: ev.Number, Text: ev.Text}
				}
				if err := tx.CreateInBatches(verses, 200).Error; err != nil {
					return fmt.Errorf("insert verses of %s %d: %w", eb.Name, ec.Number, err)
				}
				for i, v := range verses {
					loc := model.Locator{Book: eb.Name, Chapter: ec.Number, Verse: ec.Verses[i].Number}
					verseIDs[loc] = v.ID
				}
				stats.Verses += len(verses)
			}
		}

		for name, refs := range exp.Tags {
			tag := Tag{Name: model.NormalizeCategory(name)}
			if err := tx.Create(&tag).Error; err != nil {
				return fmt.Errorf("insert tag %q: %w", name, err)
			}
			stats.Tags++

			for _, ref := range refs {
				loc, err := model.ParseLocator(ref)
				if err != nil {
					return fmt.Errorf("tag %q: %w", name, err)
				}
				id, ok := verseIDs[loc]
				if !ok {
					return fmt.Errorf("tag %q: unknown verse %s", name, loc)
				}
				if err := tx.Create(&VerseTag{VerseID: id, TagID: tag.ID}).Error; err != nil {
					return fmt.Errorf("tag %q on %s: %w", name, loc, err)
				}
				stats.Tagged++
			}
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	logging.Info("Dataset built", "path", path, "books", stats.Books, "verses", stats.Verses, "tags", stats.Tags)
	return stats, nil
}
