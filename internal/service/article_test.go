package service

import (
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nikkilog/nikki/internal/model"
	"github.com/nikkilog/nikki/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCategoryRepo struct {
	categories []*model.Category
	articles   *fakeArticleRepo
}

func (r *fakeCategoryRepo) All() ([]*model.Category, error) {
	return r.categories, nil
}

func (r *fakeCategoryRepo) ByID(id string) (*model.Category, error) {
	for _, c := range r.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (r *fakeCategoryRepo) BySlug(slug string) (*model.Category, error) {
	for _, c := range r.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (r *fakeCategoryRepo) Delete(id string) error {
	if r.articles != nil {
		for _, a := range r.articles.list() {
			if a.CategoryID == id {
				return repository.ErrCategoryInUse
			}
		}
	}
	for i, c := range r.categories {
		if c.ID == id {
			r.categories = append(r.categories[:i], r.categories[i+1:]...)
			return nil
		}
	}
	return repository.ErrCategoryNotFound
}

type fakeArticleRepo struct {
	mu       sync.Mutex
	articles map[string]model.Article
}

func newFakeArticleRepo() *fakeArticleRepo {
	return &fakeArticleRepo{articles: make(map[string]model.Article)}
}

func (r *fakeArticleRepo) list() []*model.Article {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.Article, 0, len(r.articles))
	for _, a := range r.articles {
		a := a
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakeArticleRepo) Create(article *model.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.articles[article.ID] = *article
	return nil
}

func (r *fakeArticleRepo) ByID(id string) (*model.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.articles[id]
	if !ok {
		return nil, repository.ErrArticleNotFound
	}
	return &a, nil
}

func (r *fakeArticleRepo) Update(article *model.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.articles[article.ID]; !ok {
		return repository.ErrArticleNotFound
	}
	r.articles[article.ID] = *article
	return nil
}

func (r *fakeArticleRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.articles[id]; !ok {
		return repository.ErrArticleNotFound
	}
	delete(r.articles, id)
	return nil
}

func paginate(in []*model.Article, limit, offset int) []*model.Article {
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if len(in) > limit {
		in = in[:limit]
	}
	return in
}

func (r *fakeArticleRepo) ByUser(userID string, limit, offset int) ([]*model.Article, error) {
	var out []*model.Article
	for _, a := range r.list() {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return paginate(out, limit, offset), nil
}

func (r *fakeArticleRepo) CountByUser(userID string) (int, error) {
	n := 0
	for _, a := range r.list() {
		if a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeArticleRepo) ByCategory(categoryID string, limit, offset int) ([]*model.Article, error) {
	var out []*model.Article
	for _, a := range r.list() {
		if a.CategoryID == categoryID {
			out = append(out, a)
		}
	}
	return paginate(out, limit, offset), nil
}

func (r *fakeArticleRepo) CountByCategory(categoryID string) (int, error) {
	n := 0
	for _, a := range r.list() {
		if a.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (r *fakeArticleRepo) Search(keyword string, limit, offset int) ([]*model.Article, error) {
	var out []*model.Article
	for _, a := range r.list() {
		if strings.Contains(a.Title, keyword) || strings.Contains(a.Body, keyword) {
			out = append(out, a)
		}
	}
	return paginate(out, limit, offset), nil
}

func (r *fakeArticleRepo) CountSearch(keyword string) (int, error) {
	out, _ := r.Search(keyword, len(r.articles)+1, 0)
	return len(out), nil
}

func (r *fakeArticleRepo) LatestByCategory(categoryID string, limit int) ([]*model.Article, error) {
	return r.ByCategory(categoryID, limit, 0)
}

func (r *fakeArticleRepo) RecentByUserExcluding(userID, excludeID string, limit int) ([]*model.Article, error) {
	var out []*model.Article
	for _, a := range r.list() {
		if a.UserID == userID && a.ID != excludeID {
			out = append(out, a)
		}
	}
	return paginate(out, limit, 0), nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments map[string]model.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string]model.Comment)}
}

func (r *fakeCommentRepo) Create(comment *model.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments[comment.ID] = *comment
	return nil
}

func (r *fakeCommentRepo) ByID(id string) (*model.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, repository.ErrCommentNotFound
	}
	return &c, nil
}

func (r *fakeCommentRepo) ByArticle(articleID string) ([]*model.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Comment
	for _, c := range r.comments {
		if c.ArticleID == articleID {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeCommentRepo) Update(comment *model.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[comment.ID]; !ok {
		return repository.ErrCommentNotFound
	}
	r.comments[comment.ID] = *comment
	return nil
}

func (r *fakeCommentRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return repository.ErrCommentNotFound
	}
	delete(r.comments, id)
	return nil
}

func testCategories() []*model.Category {
	now := time.Now()
	return []*model.Category{
		{ID: "cat-life", Name: "Daily Life", Slug: "daily-life", CreatedAt: now},
		{ID: "cat-work", Name: "Work", Slug: "work", CreatedAt: now.Add(time.Second)},
	}
}

func newArticleService() (*ArticleService, *fakeArticleRepo, *fakeCommentRepo, *fakeUserRepo) {
	articles := newFakeArticleRepo()
	comments := newFakeCommentRepo()
	users := newFakeUserRepo()
	categories := &fakeCategoryRepo{categories: testCategories(), articles: articles}
	svc := NewArticleService(articles, categories, comments, users)
	return svc, articles, comments, users
}

func seedUser(t *testing.T, users *fakeUserRepo, email string) *model.User {
	t.Helper()
	u := &model.User{ID: uuid.New().String(), Email: email, AgeGroup: "20s", IsActive: true, DateJoined: time.Now()}
	require.NoError(t, users.Create(u))
	return u
}

func TestArticleCreateAndDetail(t *testing.T) {
	svc, _, comments, users := newArticleService()
	author := seedUser(t, users, "a@example.com")
	commenter := seedUser(t, users, "c@example.com")

	article, err := svc.Create(author.ID, ArticleInput{
		CategoryID:   "cat-life",
		Title:        "  burned the rice  ",
		Body:         "again",
		FailureImage: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "burned the rice", article.Title)

	require.NoError(t, comments.Create(&model.Comment{
		ID: "c1", ArticleID: article.ID, UserID: commenter.ID, Body: "relatable",
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}))

	detail, err := svc.Detail(article.ID)
	require.NoError(t, err)
	assert.Equal(t, author.ID, detail.Author.ID)
	assert.Equal(t, "Daily Life", detail.Category.Name)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, commenter.ID, detail.Comments[0].UserID)
	assert.Contains(t, detail.Commenters, commenter.ID)
}

func TestArticleCreateRejectsBadInput(t *testing.T) {
	svc, _, _, users := newArticleService()
	author := seedUser(t, users, "a@example.com")

	_, err := svc.Create(author.ID, ArticleInput{CategoryID: "nope", Title: "t", Body: "b"})
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = svc.Create(author.ID, ArticleInput{CategoryID: "cat-life", Title: "t", Body: "b", FailureImage: 9})
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestArticleListingAndPagination(t *testing.T) {
	svc, articles, _, users := newArticleService()
	author := seedUser(t, users, "a@example.com")

	base := time.Now()
	for i := 0; i < 15; i++ {
		require.NoError(t, articles.Create(&model.Article{
			ID:         uuid.New().String(),
			UserID:     author.ID,
			CategoryID: "cat-life",
			Title:      "entry",
			Body:       "body",
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	_, list, err := svc.ByAuthor(author.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, list.Articles, 10)
	assert.Equal(t, 15, list.Total)
	assert.Equal(t, 2, list.TotalPages())
	assert.True(t, list.HasNext())
	assert.False(t, list.HasPrev())

	_, list, err = svc.ByAuthor(author.ID, 2, 10)
	require.NoError(t, err)
	assert.Len(t, list.Articles, 5)
	assert.False(t, list.HasNext())

	// newest first
	_, first, err := svc.ByAuthor(author.ID, 1, 10)
	require.NoError(t, err)
	assert.True(t, first.Articles[0].CreatedAt.After(first.Articles[1].CreatedAt))
}

func TestArticleSearch(t *testing.T) {
	svc, articles, _, users := newArticleService()
	author := seedUser(t, users, "a@example.com")

	require.NoError(t, articles.Create(&model.Article{
		ID: "a1", UserID: author.ID, CategoryID: "cat-life",
		Title: "spilled coffee", Body: "on the keyboard", CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}))
	require.NoError(t, articles.Create(&model.Article{
		ID: "a2", UserID: author.ID, CategoryID: "cat-work",
		Title: "missed the train", Body: "coffee related", CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}))

	list, err := svc.Search("coffee", 1, 12)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)

	list, err = svc.Search("train", 1, 12)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
}

func TestIndexSections(t *testing.T) {
	svc, articles, _, users := newArticleService()
	author := seedUser(t, users, "a@example.com")

	base := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, articles.Create(&model.Article{
			ID: uuid.New().String(), UserID: author.ID, CategoryID: "cat-life",
			Title: "entry", Body: "body",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	sections, err := svc.Index()
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Len(t, sections[0].Articles, 3, "index shows at most three per category")
	assert.Empty(t, sections[1].Articles)
}

func TestCategoryDeleteBlockedWhileReferenced(t *testing.T) {
	articles := newFakeArticleRepo()
	categories := &fakeCategoryRepo{categories: testCategories(), articles: articles}
	svc := NewCategoryService(categories)

	require.NoError(t, articles.Create(&model.Article{
		ID: "a1", UserID: "u1", CategoryID: "cat-life", Title: "t", Body: "b",
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}))

	err := svc.Delete("cat-life")
	assert.ErrorIs(t, err, ErrCategoryNotEmpty)

	err = svc.Delete("cat-work")
	assert.NoError(t, err)
}

func TestCommentLifecycle(t *testing.T) {
	_, articles, comments, users := newArticleService()
	author := seedUser(t, users, "a@example.com")

	require.NoError(t, articles.Create(&model.Article{
		ID: "a1", UserID: author.ID, CategoryID: "cat-life", Title: "t", Body: "b",
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}))

	svc := NewCommentService(comments, articles)

	comment, err := svc.Create(author.ID, "a1", "first!")
	require.NoError(t, err)

	_, err = svc.Create(author.ID, "missing", "first!")
	assert.ErrorIs(t, err, ErrArticleNotFound)

	require.NoError(t, svc.Update(comment, "edited"))
	got, err := svc.ByID(comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Body)

	require.NoError(t, svc.Delete(comment.ID))
	_, err = svc.ByID(comment.ID)
	assert.ErrorIs(t, err, ErrCommentNotFound)
}
