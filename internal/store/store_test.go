package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "nested", "cafe.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestImportLogLifecycle(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	id, err := s.CreateImportLog("batch-1", "一月.csv", KindSales, 128, "abc")
	require.NoError(t, err)
	require.NoError(t, s.FinishImportLog(id, ImportStatusSuccess, "gbk", 42, ""))

	failed, err := s.CreateImportLog("batch-1", "坏文件.xls", KindSales, 10, "def")
	require.NoError(t, err)
	require.NoError(t, s.FinishImportLog(failed, ImportStatusFailed, "", 0, "无法识别文件编码或格式"))

	logs, err := s.ListImportLogs(10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "坏文件.xls", logs[0].Filename)
	assert.Equal(t, ImportStatusFailed, logs[0].Status)
	assert.Equal(t, "gbk", logs[1].Encoding)
	assert.Equal(t, 42, logs[1].RowCount)
	assert.NotNil(t, logs[1].CompletedAt)

	batch, err := s.ListBatch("batch-1")
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "一月.csv", batch[0].Filename)
}

func TestFinishImportLog_Unknown(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	assert.Error(t, s.FinishImportLog(999, ImportStatusSuccess, "", 0, ""))
}

func TestListImportLogs_Limit(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	for i := 0; i < 3; i++ {
		_, err := s.CreateImportLog("b", "f.csv", KindSales, 1, "")
		require.NoError(t, err)
	}
	logs, err := s.ListImportLogs(2)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestConfigKV(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	_, err := s.GetConfig("missing")
	assert.ErrorIs(t, err, ErrConfigNotFound)

	require.NoError(t, s.SetConfigInt("answer", 42))
	require.NoError(t, s.SetConfigInt("answer", 43))
	v, err := s.GetConfigInt("answer")
	require.NoError(t, err)
	assert.Equal(t, 43, v)

	all, err := s.GetAllConfig()
	require.NoError(t, err)
	assert.Equal(t, "43", all["answer"])
}

func TestSettingsRoundTrip(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	defaults := Settings{OperatingDays: 5, DropTotalRows: true, LowMarginPct: 30, TopN: 10}
	got, err := s.LoadSettings(defaults)
	require.NoError(t, err)
	assert.Equal(t, defaults, got)

	want := Settings{OperatingDays: 7, DropTotalRows: false, LowMarginPct: 25.5, TopN: 15}
	require.NoError(t, s.SaveSettings(want))
	got, err = s.LoadSettings(defaults)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadSettings_IgnoresGarbage(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	require.NoError(t, s.SetConfig(KeyTopN, "many"))
	got, err := s.LoadSettings(Settings{TopN: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, got.TopN)
}
