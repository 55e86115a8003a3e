package testutils

import "os"

// SavedEnv 记录环境变量被覆盖前的状态，供 RestoreEnv 还原。
type SavedEnv struct {
	key     string
	value   string
	existed bool
}

// SetEnv 覆盖一个环境变量，返回覆盖前的状态。
func SetEnv(key, value string) SavedEnv {
	prev, existed := os.LookupEnv(key)
	_ = os.Setenv(key, value)
	return SavedEnv{key: key, value: prev, existed: existed}
}

// RestoreEnv 按保存的状态还原环境变量，之前不存在的会被删除。
func RestoreEnv(saved []SavedEnv) {
	for _, env := range saved {
		if env.existed {
			_ = os.Setenv(env.key, env.value)
		} else {
			_ = os.Unsetenv(env.key)
		}
	}
}
