package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LexiconRow is one weighted phrase loaded from the lexicon_entries table.
// Rows extend the built-in lexicons at startup.
type LexiconRow struct {
	Industry string
	Language string
	Phrase   string
	Weight   float64
}

// LexiconRepository reads lexicon rows.
type LexiconRepository interface {
	ListAll(ctx context.Context) ([]LexiconRow, error)
	ListByIndustryLanguage(ctx context.Context, industry, language string) ([]LexiconRow, error)
}

type lexiconRepository struct {
	pool *pgxpool.Pool
}

// NewLexiconRepository instantiates repository.
func NewLexiconRepository(pool *pgxpool.Pool) LexiconRepository {
	return &lexiconRepository{pool: pool}
}

func (r *lexiconRepository) ListAll(ctx context.Context) ([]LexiconRow, error) {
	const query = `SELECT industry, language, phrase, weight FROM lexicon_entries ORDER BY industry, language, phrase`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLexiconRows(rows)
}

func (r *lexiconRepository) ListByIndustryLanguage(ctx context.Context, industry, language string) ([]LexiconRow, error) {
	const query = `SELECT industry, language, phrase, weight FROM lexicon_entries WHERE industry=$1 AND language=$2 ORDER BY phrase`
	rows, err := r.pool.Query(ctx, query, industry, language)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLexiconRows(rows)
}

func scanLexiconRows(rows pgx.Rows) ([]LexiconRow, error) {
	var result []LexiconRow
	for rows.Next() {
		var row LexiconRow
		if err := rows.Scan(&row.Industry, &row.Language, &row.Phrase, &row.Weight); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
