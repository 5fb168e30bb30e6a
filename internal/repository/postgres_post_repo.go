package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/blogman/internal/model"
)

// PostgresPostRepo はPostgreSQLを使用した記事リポジトリ。
type PostgresPostRepo struct {
	db *sql.DB
}

// NewPostgresPostRepo はPostgresPostRepoを生成する。
func NewPostgresPostRepo(db *sql.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

// Create は記事を作成し、採番されたIDをpost.IDに書き戻す。
// タイトルが既に存在する場合はErrDuplicateTitleを返す。
func (r *PostgresPostRepo) Create(ctx context.Context, post *model.BlogPost) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO blog_posts (author_id, title, subtitle, date, body, image_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		post.AuthorID, post.Title, post.Subtitle, post.Date, post.Body, post.ImageURL,
		post.CreatedAt, post.UpdatedAt,
	).Scan(&post.ID)

	if err != nil {
		if mapped := mapUniqueViolation(err); errors.Is(mapped, ErrDuplicateTitle) {
			return mapped
		}
		return fmt.Errorf("failed to insert post: %w", err)
	}

	return nil
}

// FindByID は指定IDの記事を著者名付きで取得する。見つからない場合はnilを返す。
func (r *PostgresPostRepo) FindByID(ctx context.Context, id int64) (*model.PostWithAuthor, error) {
	post := &model.PostWithAuthor{}
	err := r.db.QueryRowContext(ctx,
		`SELECT p.id, p.author_id, p.title, p.subtitle, p.date, p.body, p.image_url,
		        p.created_at, p.updated_at, u.name
		 FROM blog_posts p
		 JOIN users u ON u.id = p.author_id
		 WHERE p.id = $1`,
		id,
	).Scan(&post.ID, &post.AuthorID, &post.Title, &post.Subtitle, &post.Date,
		&post.Body, &post.ImageURL, &post.CreatedAt, &post.UpdatedAt, &post.AuthorName)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post by ID: %w", err)
	}

	return post, nil
}

// List は全記事を著者名付きでID昇順で返す。
func (r *PostgresPostRepo) List(ctx context.Context) ([]model.PostWithAuthor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.author_id, p.title, p.subtitle, p.date, p.body, p.image_url,
		        p.created_at, p.updated_at, u.name
		 FROM blog_posts p
		 JOIN users u ON u.id = p.author_id
		 ORDER BY p.id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []model.PostWithAuthor
	for rows.Next() {
		var post model.PostWithAuthor
		if err := rows.Scan(&post.ID, &post.AuthorID, &post.Title, &post.Subtitle,
			&post.Date, &post.Body, &post.ImageURL, &post.CreatedAt, &post.UpdatedAt,
			&post.AuthorName); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}

	return posts, nil
}

// Update は記事のタイトル・サブタイトル・本文・画像URLを更新する。
// 記事が存在しない場合はErrNotFound、タイトル重複の場合はErrDuplicateTitleを返す。
func (r *PostgresPostRepo) Update(ctx context.Context, post *model.BlogPost) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE blog_posts
		 SET title = $1, subtitle = $2, body = $3, image_url = $4, updated_at = $5
		 WHERE id = $6`,
		post.Title, post.Subtitle, post.Body, post.ImageURL, post.UpdatedAt, post.ID,
	)
	if err != nil {
		if mapped := mapUniqueViolation(err); errors.Is(mapped, ErrDuplicateTitle) {
			return mapped
		}
		return fmt.Errorf("failed to update post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete は指定IDの記事を削除する。従属するコメントはDBのCASCADE制約で削除される。
// 記事が存在しない場合はErrNotFoundを返す。
func (r *PostgresPostRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM blog_posts WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// compile-time interface check
var _ PostRepository = (*PostgresPostRepo)(nil)
