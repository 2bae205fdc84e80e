// Package teemo — клиент локального API League Client (LCU) для
// оверлеев, дашбордов и автоматизации.
//
// Жизненный цикл:
//   - Создать клиента через New(DefaultConfig()) (или LoadConfig(path)).
//   - Start(ctx) — дождаться запущенного клиента игры (токен и порт берутся
//     из командной строки LeagueClientUx или из lockfile).
//   - StartRealtime(ctx) — подключить WebSocket событий.
//   - Subscribe/Unsubscribe — подписки по топикам ("/lol-lobby/v2/lobby")
//     или SubscribeAll для всего потока.
//   - Request / LiveRequest — одноразовые HTTP-запросы; ошибки приходят
//     данными {"code":500,"message":...}, а не error.
//   - Close() — остановить фоновые задачи.
//
// Пример:
//
//	t := teemo.New(teemo.DefaultConfig())
//	if err := t.Start(ctx); err != nil { log.Fatal(err) }
//	if err := t.StartRealtime(ctx); err != nil { log.Fatal(err) }
//	defer t.Close()
//
//	_ = t.Subscribe(ctx, "/lol-gameflow/v1/gameflow-phase", func(data map[string]any) {
//	    if data["data"] == "ReadyCheck" {
//	        t.AcceptReadyCheck(ctx)
//	    }
//	})
//	fmt.Println(t.CurrentSummoner(ctx))
//
// Если WS-соединение оборвалось (и AutoReconnect выключен), Done()
// закрывается; для восстановления вызовите Close() и снова Start/StartRealtime.
package teemo
